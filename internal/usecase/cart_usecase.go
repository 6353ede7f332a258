package usecase

import (
	"context"
	"errors"
	"fmt"

	"kalamitraah/internal/domain/model"
	repo "kalamitraah/internal/repository"

	"go.uber.org/zap"
)

// CartUsecase manages the single cart each buyer owns.
type CartUsecase struct {
	carts    repo.CartRepository
	items    repo.CartItemRepository
	products repo.ProductRepository
	cache    CartCache
	log      *zap.Logger
}

func NewCartUsecase(
	carts repo.CartRepository,
	items repo.CartItemRepository,
	products repo.ProductRepository,
	cache CartCache,
	log *zap.Logger,
) *CartUsecase {
	if cache == nil {
		cache = NoopCartCache
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CartUsecase{carts: carts, items: items, products: products, cache: cache, log: log}
}

// CartLineView is one line as stored: name and price are the add-time snapshot.
type CartLineView struct {
	ProductID int64  `json:"productId"`
	SellerID  int64  `json:"sellerId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

type CartView struct {
	ID      int64          `json:"id"`
	BuyerID int64          `json:"buyerId"`
	Items   []CartLineView `json:"items"`
	Total   int64          `json:"total"`
}

type AddItemInput struct {
	ProductID int64
	Quantity  int64
}

type UpdateItemInput struct {
	ProductID int64
	Quantity  int64
}

// GetCart returns the buyer's cart, creating an empty one on first access.
func (u *CartUsecase) GetCart(ctx context.Context, buyerID int64) (CartView, error) {
	if buyerID <= 0 {
		return CartView{}, NewValidationError("invalid buyer")
	}

	if view, ok, err := u.cache.Get(ctx, buyerID); err != nil {
		u.log.Warn("cart cache get failed", zap.Int64("buyer_id", buyerID), zap.Error(err))
	} else if ok {
		return view, nil
	}

	// read before loading; an invalidation after this point makes the Set a no-op
	gen, genErr := u.cache.Generation(ctx, buyerID)
	if genErr != nil {
		u.log.Warn("cart cache generation failed", zap.Int64("buyer_id", buyerID), zap.Error(genErr))
	}

	cart, err := u.carts.GetOrCreateByBuyerID(ctx, buyerID)
	if err != nil {
		return CartView{}, NewUnexpectedError(err)
	}
	view, err := u.load(ctx, cart)
	if err != nil {
		return CartView{}, err
	}

	if genErr == nil {
		if err := u.cache.Set(ctx, buyerID, gen, view); err != nil {
			u.log.Warn("cart cache set failed", zap.Int64("buyer_id", buyerID), zap.Error(err))
		}
	}
	return view, nil
}

// AddItem adds quantity to the product's line, or opens a new line with a
// snapshot of the product's current name, price and seller.
func (u *CartUsecase) AddItem(ctx context.Context, buyerID int64, in AddItemInput) (CartView, error) {
	if buyerID <= 0 {
		return CartView{}, NewValidationError("invalid buyer")
	}
	if err := validateLine(in.ProductID, in.Quantity); err != nil {
		return CartView{}, err
	}

	p, err := u.products.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartView{}, NewNotFoundError("product not found")
	}
	if err != nil {
		return CartView{}, NewUnexpectedError(err)
	}

	cart, err := u.carts.GetOrCreateByBuyerID(ctx, buyerID)
	if err != nil {
		return CartView{}, NewUnexpectedError(err)
	}

	existing, err := u.items.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartView{}, NewUnexpectedError(err)
	}
	line := model.CartItem{
		CartID:    cart.ID,
		ProductID: p.ID,
		SellerID:  p.SellerID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  in.Quantity,
	}
	merged := line
	for _, it := range existing {
		if it.ProductID != p.ID {
			continue
		}
		if it.Quantity > model.MaxLineQuantity-in.Quantity {
			return CartView{}, NewValidationError(quantityLimitMessage)
		}
		merged = it
		merged.Quantity += in.Quantity
	}
	if !withinAmountLimit(existing, merged) {
		return CartView{}, NewValidationError(amountLimitMessage)
	}

	if err := u.items.UpsertByCartAndProduct(ctx, line); err != nil {
		return CartView{}, NewUnexpectedError(err)
	}

	u.invalidate(ctx, buyerID)
	return u.load(ctx, cart)
}

// UpdateItem sets the quantity of an existing line.
func (u *CartUsecase) UpdateItem(ctx context.Context, buyerID int64, in UpdateItemInput) (CartView, error) {
	if buyerID <= 0 {
		return CartView{}, NewValidationError("invalid buyer")
	}
	if err := validateLine(in.ProductID, in.Quantity); err != nil {
		return CartView{}, err
	}

	cart, err := u.existingCart(ctx, buyerID)
	if err != nil {
		return CartView{}, err
	}

	existing, err := u.items.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartView{}, NewUnexpectedError(err)
	}
	if !withinAmountLimit(existing, model.CartItem{ProductID: in.ProductID, Quantity: in.Quantity}) {
		return CartView{}, NewValidationError(amountLimitMessage)
	}

	err = u.items.UpdateQuantity(ctx, cart.ID, in.ProductID, in.Quantity)
	if errors.Is(err, repo.ErrNotFound) {
		return CartView{}, NewNotFoundError("item not found in cart")
	}
	if err != nil {
		return CartView{}, NewUnexpectedError(err)
	}

	u.invalidate(ctx, buyerID)
	return u.load(ctx, cart)
}

func (u *CartUsecase) RemoveItem(ctx context.Context, buyerID int64, productID int64) (CartView, error) {
	if buyerID <= 0 {
		return CartView{}, NewValidationError("invalid buyer")
	}
	if productID <= 0 {
		return CartView{}, NewValidationError("invalid product id")
	}

	cart, err := u.existingCart(ctx, buyerID)
	if err != nil {
		return CartView{}, err
	}

	err = u.items.DeleteByCartAndProduct(ctx, cart.ID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartView{}, NewNotFoundError("item not found in cart")
	}
	if err != nil {
		return CartView{}, NewUnexpectedError(err)
	}

	u.invalidate(ctx, buyerID)
	return u.load(ctx, cart)
}

// Clear deletes the cart together with its lines.
func (u *CartUsecase) Clear(ctx context.Context, buyerID int64) error {
	if buyerID <= 0 {
		return NewValidationError("invalid buyer")
	}
	if err := u.carts.DeleteByBuyerID(ctx, buyerID); err != nil {
		return NewUnexpectedError(err)
	}
	u.invalidate(ctx, buyerID)
	return nil
}

func (u *CartUsecase) existingCart(ctx context.Context, buyerID int64) (model.Cart, error) {
	cart, err := u.carts.FindByBuyerID(ctx, buyerID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Cart{}, NewNotFoundError("cart not found")
	}
	if err != nil {
		return model.Cart{}, NewUnexpectedError(err)
	}
	return cart, nil
}

func (u *CartUsecase) load(ctx context.Context, cart model.Cart) (CartView, error) {
	items, err := u.items.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartView{}, NewUnexpectedError(err)
	}
	view, err := toCartView(cart, items)
	if err != nil {
		return CartView{}, NewValidationError(amountLimitMessage)
	}
	return view, nil
}

func (u *CartUsecase) invalidate(ctx context.Context, buyerID int64) {
	if err := u.cache.Invalidate(ctx, buyerID); err != nil {
		u.log.Warn("cart cache invalidate failed", zap.Int64("buyer_id", buyerID), zap.Error(err))
	}
}

func toCartView(cart model.Cart, items []model.CartItem) (CartView, error) {
	view := CartView{ID: cart.ID, BuyerID: cart.BuyerID, Items: make([]CartLineView, 0, len(items))}
	for _, it := range items {
		sub, err := it.Subtotal()
		if err != nil {
			return CartView{}, err
		}
		if view.Total, err = model.AddAmount(view.Total, sub); err != nil {
			return CartView{}, err
		}
		view.Items = append(view.Items, CartLineView{
			ProductID: it.ProductID,
			SellerID:  it.SellerID,
			Name:      it.Name,
			Price:     it.UnitPrice,
			Quantity:  it.Quantity,
			Subtotal:  sub,
		})
	}
	return view, nil
}

// withinAmountLimit reports whether the cart total stays representable once
// the line for line.ProductID carries line.Quantity.
func withinAmountLimit(items []model.CartItem, line model.CartItem) bool {
	next := make([]model.CartItem, 0, len(items)+1)
	found := false
	for _, it := range items {
		if it.ProductID == line.ProductID {
			it.Quantity = line.Quantity
			found = true
		}
		next = append(next, it)
	}
	if !found {
		next = append(next, line)
	}
	_, err := toCartView(model.Cart{}, next)
	return err == nil
}

var quantityLimitMessage = fmt.Sprintf("quantity must be between 1 and %d", model.MaxLineQuantity)

const amountLimitMessage = "amount exceeds the supported limit"

// validateLine checks one requested product line before any lookup.
func validateLine(productID, quantity int64) error {
	if productID <= 0 {
		return NewValidationError("product id is required")
	}
	if quantity < 1 || quantity > model.MaxLineQuantity {
		return NewValidationError(quantityLimitMessage)
	}
	return nil
}
