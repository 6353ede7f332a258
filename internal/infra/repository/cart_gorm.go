package repository

import (
	"context"
	"errors"
	"time"

	"kalamitraah/internal/domain/model"
	repo "kalamitraah/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Implements both CartRepository and CartItemRepository.
type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// Returns the buyer's cart, creating it on first use.
func (r *CartGormRepository) GetOrCreateByBuyerID(ctx context.Context, buyerID int64) (model.Cart, error) {
	now := time.Now()
	cart := model.Cart{BuyerID: buyerID, CreatedAt: now, UpdatedAt: now}

	// buyer_id is unique, so a concurrent create collapses into one row
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "buyer_id"}}, DoNothing: true}).
		Create(&cart).Error
	if err != nil {
		return model.Cart{}, err
	}
	if cart.ID != 0 {
		return cart, nil
	}

	return r.FindByBuyerID(ctx, buyerID)
}

func (r *CartGormRepository) FindByBuyerID(ctx context.Context, buyerID int64) (model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		First(&cart).Error
	if err != nil {
		return model.Cart{}, translate(err)
	}
	return cart, nil
}

// Removes the cart with its items.
func (r *CartGormRepository) DeleteByBuyerID(ctx context.Context, buyerID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart model.Cart
		err := tx.Where("buyer_id = ?", buyerID).First(&cart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Cart{}, cart.ID).Error
	})
}

func (r *CartGormRepository) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	var items []model.CartItem
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.CartItem{}, err
	}
	return items, nil
}

// Same product adds to the quantity instead of creating a second line.
func (r *CartGormRepository) UpsertByCartAndProduct(ctx context.Context, item model.CartItem) error {
	if item.Quantity <= 0 {
		return errors.New("invalid quantity")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.CartItem
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("cart_id = ? AND product_id = ?", item.CartID, item.ProductID).
			First(&existing).Error

		if err == nil {
			// existing line keeps its snapshot, only the quantity grows
			return tx.Model(&model.CartItem{}).
				Where("id = ?", existing.ID).
				Update("quantity", gorm.Expr("quantity + ?", item.Quantity)).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now()
		item.ID = 0
		item.CreatedAt = now
		item.UpdatedAt = now
		return tx.Create(&item).Error
	})
}

func (r *CartGormRepository) UpdateQuantity(ctx context.Context, cartID int64, productID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", qty)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartGormRepository) DeleteByCartAndProduct(ctx context.Context, cartID int64, productID int64) error {
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&model.CartItem{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
