package repository

import (
	"context"

	"kalamitraah/internal/domain/model"

	"gorm.io/gorm"
)

type AuditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) *AuditLogGormRepository {
	return &AuditLogGormRepository{db: db}
}

func (r *AuditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	return r.db.WithContext(ctx).Create(&log).Error
}

func (r *AuditLogGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.AuditLog, error) {
	logs := []model.AuditLog{}
	err := r.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", model.AuditResourceOrder, orderID).
		Order("created_at asc").Order("id asc").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
