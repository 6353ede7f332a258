package repository

import (
	"context"

	"kalamitraah/internal/domain/model"
)

// catalog listing
type ProductListQuery struct {
	Page     int
	Limit    int
	SellerID *int64
}

// Read-only access to the catalog.
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (model.Product, error)
	// missing ids are simply absent from the map
	FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error)
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
}
