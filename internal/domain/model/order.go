package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCanceled  OrderStatus = "canceled"
	OrderStatusReturned  OrderStatus = "returned"
)

// ParseSellerTargetStatus accepts only the statuses a seller may set.
// pending is not a valid target.
func ParseSellerTargetStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(s); st {
	case OrderStatusShipped, OrderStatusDelivered, OrderStatusCanceled, OrderStatusReturned:
		return st, true
	default:
		return "", false
	}
}

// Shipping address. All four fields are required.
type ShippingAddress struct {
	Street     string `gorm:"column:street;type:varchar(255)" json:"street"`
	City       string `gorm:"column:city;type:varchar(255)" json:"city"`
	State      string `gorm:"column:state;type:varchar(255)" json:"state"`
	PostalCode string `gorm:"column:postal_code;type:varchar(20)" json:"postalCode"`
}

// Complete reports whether every field is non-blank.
func (a ShippingAddress) Complete() bool {
	return notBlank(a.Street) && notBlank(a.City) && notBlank(a.State) && notBlank(a.PostalCode)
}

// Core fields are fixed at creation; only the status columns change later.
type Order struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	BuyerID           int64           `gorm:"not null;index" json:"buyerId"`
	TotalAmount       int64           `gorm:"not null" json:"totalAmount"`
	PaymentStatus     PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"paymentStatus"`
	OrderStatus       OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"orderStatus"`
	ShippingAddress   ShippingAddress `gorm:"embedded" json:"shippingAddress"`
	CheckoutSessionID *string         `gorm:"type:varchar(255);uniqueIndex" json:"-"`
	CreatedAt         time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time       `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}
