package repository

import (
	"context"

	"kalamitraah/internal/domain/model"
)

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// same product adds to the quantity; a new line takes the snapshot in item
	UpsertByCartAndProduct(ctx context.Context, item model.CartItem) error
	UpdateQuantity(ctx context.Context, cartID int64, productID int64, qty int64) error
	DeleteByCartAndProduct(ctx context.Context, cartID int64, productID int64) error
}
