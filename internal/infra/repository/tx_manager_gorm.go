package repository

import (
	"context"

	repo "kalamitraah/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders          repo.OrderRepository
	orderItems      repo.OrderItemRepository
	buyerOrders     repo.BuyerOrderRepository
	carts           repo.CartRepository
	cartItems       repo.CartItemRepository
	products        repo.ProductRepository
	processedEvents repo.ProcessedEventRepository
	outbox          repo.OutboxRepository
	auditLogs       repo.AuditLogRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository                   { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository           { return r.orderItems }
func (r *txReposGorm) BuyerOrders() repo.BuyerOrderRepository         { return r.buyerOrders }
func (r *txReposGorm) Carts() repo.CartRepository                     { return r.carts }
func (r *txReposGorm) CartItems() repo.CartItemRepository             { return r.cartItems }
func (r *txReposGorm) Products() repo.ProductRepository               { return r.products }
func (r *txReposGorm) ProcessedEvents() repo.ProcessedEventRepository { return r.processedEvents }
func (r *txReposGorm) Outbox() repo.OutboxRepository                  { return r.outbox }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository             { return r.auditLogs }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// every repo shares the tx handle
		carts := NewCartGormRepository(tx)
		r := &txReposGorm{
			orders:          NewOrderGormRepository(tx),
			orderItems:      NewOrderItemGormRepository(tx),
			buyerOrders:     NewBuyerOrderGormRepository(tx),
			carts:           carts,
			cartItems:       carts,
			products:        NewProductGormRepository(tx),
			processedEvents: NewProcessedEventGormRepository(tx),
			outbox:          NewOutboxGormRepository(tx),
			auditLogs:       NewAuditLogGormRepository(tx),
		}
		return fn(r)
	})
}
