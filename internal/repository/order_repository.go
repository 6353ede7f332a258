package repository

import (
	"context"

	"kalamitraah/internal/domain/model"
)

type OrderRepository interface {
	// ErrDuplicate when the checkout session already produced an order
	Create(ctx context.Context, order model.Order) (int64, error)
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	// newest first
	ListByBuyerID(ctx context.Context, buyerID int64) ([]model.Order, error)
	// orders with at least one line of the seller, newest first
	ListBySellerID(ctx context.Context, sellerID int64) ([]model.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
}
