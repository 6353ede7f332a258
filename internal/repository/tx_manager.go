package repository

import "context"

// repositories bound to one transaction
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	BuyerOrders() BuyerOrderRepository
	Carts() CartRepository
	CartItems() CartItemRepository
	Products() ProductRepository
	ProcessedEvents() ProcessedEventRepository
	Outbox() OutboxRepository
	AuditLogs() AuditLogRepository
}

// Hides begin/commit/rollback from the usecases.
// fn returning an error rolls the transaction back.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
