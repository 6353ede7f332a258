package model

import "time"

// buyer order history
type BuyerOrder struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	BuyerID   int64     `gorm:"not null;index" json:"buyerId"`
	OrderID   int64     `gorm:"not null;uniqueIndex" json:"orderId"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
}
