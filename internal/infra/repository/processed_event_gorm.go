package repository

import (
	"context"

	"kalamitraah/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProcessedEventGormRepository struct {
	db *gorm.DB
}

func NewProcessedEventGormRepository(db *gorm.DB) *ProcessedEventGormRepository {
	return &ProcessedEventGormRepository{db: db}
}

func (r *ProcessedEventGormRepository) MarkProcessed(ctx context.Context, ev model.ProcessedEvent) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(&ev)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
