package repository

import (
	"context"

	"kalamitraah/internal/domain/model"
)

// AuditLogRepository records seller actions on orders.
type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	// ListByOrderID returns the order's status history, oldest first.
	ListByOrderID(ctx context.Context, orderID int64) ([]model.AuditLog, error)
}
