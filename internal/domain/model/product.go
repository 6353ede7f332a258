package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Catalog product. The order core only reads it.
type Product struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	SellerID    int64          `gorm:"not null;index" json:"sellerId"`
	CategoryID  int64          `gorm:"not null;index" json:"categoryId"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       int64          `gorm:"not null;check:price >= 0" json:"price"`
	Stock       int64          `gorm:"not null;default:0" json:"stock"`
	Images      pq.StringArray `gorm:"type:text[]" json:"images"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"not null;autoUpdateTime" json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// FirstImage returns the first image url or "" when the product has none.
func (p Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
