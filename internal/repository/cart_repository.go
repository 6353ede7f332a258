package repository

import (
	"context"

	"kalamitraah/internal/domain/model"
)

type CartRepository interface {
	GetOrCreateByBuyerID(ctx context.Context, buyerID int64) (model.Cart, error)
	FindByBuyerID(ctx context.Context, buyerID int64) (model.Cart, error)
	// deletes the cart and all of its items; no cart is not an error
	DeleteByBuyerID(ctx context.Context, buyerID int64) error
}
