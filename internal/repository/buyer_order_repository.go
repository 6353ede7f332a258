package repository

import "context"

// Buyer order history. One row per order, appended when the order is created.
type BuyerOrderRepository interface {
	Append(ctx context.Context, buyerID int64, orderID int64) error
}
