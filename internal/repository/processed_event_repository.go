package repository

import (
	"context"

	"kalamitraah/internal/domain/model"
)

type ProcessedEventRepository interface {
	// false when the event id was already recorded
	MarkProcessed(ctx context.Context, ev model.ProcessedEvent) (bool, error)
}
