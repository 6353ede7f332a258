package model

import "time"

// Cart line. Seller, name and unit price are snapshotted when the product is added
// and are never refreshed from the catalog afterwards.
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64     `gorm:"not null;uniqueIndex:idx_cart_items_cart_product" json:"cartId"`
	ProductID int64     `gorm:"not null;uniqueIndex:idx_cart_items_cart_product" json:"productId"`
	SellerID  int64     `gorm:"not null;index" json:"sellerId"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	UnitPrice int64     `gorm:"not null" json:"unitPrice"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

// Subtotal is unit price times quantity.
func (i CartItem) Subtotal() (int64, error) {
	return MulAmount(i.UnitPrice, i.Quantity)
}
