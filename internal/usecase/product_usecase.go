package usecase

import (
	"context"
	"errors"

	"kalamitraah/internal/domain/model"
	repo "kalamitraah/internal/repository"
)

const (
	defaultProductLimit = 20
	maxProductLimit     = 100
)

// ProductUsecase is the read-only catalog surface.
type ProductUsecase struct {
	products repo.ProductRepository
}

func NewProductUsecase(products repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{products: products}
}

type ProductListInput struct {
	Page     int
	Limit    int
	SellerID *int64
}

type ProductPage struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// List returns a newest-first page. Zero page/limit fall back to defaults.
func (u *ProductUsecase) List(ctx context.Context, in ProductListInput) (ProductPage, error) {
	if in.Page == 0 {
		in.Page = 1
	}
	if in.Limit == 0 {
		in.Limit = defaultProductLimit
	}
	if in.Page < 1 {
		return ProductPage{}, NewValidationError("invalid page")
	}
	if in.Limit < 1 || in.Limit > maxProductLimit {
		return ProductPage{}, NewValidationError("invalid limit")
	}
	if in.SellerID != nil && *in.SellerID <= 0 {
		return ProductPage{}, NewValidationError("invalid seller_id")
	}

	items, total, err := u.products.List(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		SellerID: in.SellerID,
	})
	if err != nil {
		return ProductPage{}, NewUnexpectedError(err)
	}
	if items == nil {
		items = []model.Product{}
	}
	return ProductPage{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

func (u *ProductUsecase) Get(ctx context.Context, id int64) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, NewValidationError("invalid id")
	}
	p, err := u.products.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewNotFoundError("product not found")
	}
	if err != nil {
		return model.Product{}, NewUnexpectedError(err)
	}
	return p, nil
}
