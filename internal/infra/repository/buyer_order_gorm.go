package repository

import (
	"context"
	"time"

	"kalamitraah/internal/domain/model"

	"gorm.io/gorm"
)

type BuyerOrderGormRepository struct {
	db *gorm.DB
}

func NewBuyerOrderGormRepository(db *gorm.DB) *BuyerOrderGormRepository {
	return &BuyerOrderGormRepository{db: db}
}

func (r *BuyerOrderGormRepository) Append(ctx context.Context, buyerID int64, orderID int64) error {
	row := model.BuyerOrder{BuyerID: buyerID, OrderID: orderID, CreatedAt: time.Now()}
	return translate(r.db.WithContext(ctx).Create(&row).Error)
}
