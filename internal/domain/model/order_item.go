package model

import "time"

// Frozen copy of a purchased line.
type OrderItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64     `gorm:"not null;index" json:"orderId"`
	ProductID int64     `gorm:"not null;index" json:"productId"`
	SellerID  int64     `gorm:"not null;index" json:"sellerId"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	UnitPrice int64     `gorm:"not null" json:"unitPrice"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
}

// SumOrderItems is the exact total of unit price times quantity, or
// ErrAmountOverflow when it does not fit.
func SumOrderItems(items []OrderItem) (int64, error) {
	var total int64
	for _, it := range items {
		sub, err := MulAmount(it.UnitPrice, it.Quantity)
		if err != nil {
			return 0, err
		}
		if total, err = AddAmount(total, sub); err != nil {
			return 0, err
		}
	}
	return total, nil
}
