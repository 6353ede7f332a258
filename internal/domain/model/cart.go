package model

import "time"

// one cart per buyer
type Cart struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	BuyerID   int64     `gorm:"not null;uniqueIndex" json:"buyerId"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}
