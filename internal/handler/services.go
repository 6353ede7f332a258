package handler

import (
	"context"

	"kalamitraah/internal/domain/model"
	"kalamitraah/internal/usecase"
)

// Usecase surfaces the handlers depend on.

type CartService interface {
	GetCart(ctx context.Context, buyerID int64) (usecase.CartView, error)
	AddItem(ctx context.Context, buyerID int64, in usecase.AddItemInput) (usecase.CartView, error)
	UpdateItem(ctx context.Context, buyerID int64, in usecase.UpdateItemInput) (usecase.CartView, error)
	RemoveItem(ctx context.Context, buyerID int64, productID int64) (usecase.CartView, error)
}

type OrderService interface {
	PlaceOrder(ctx context.Context, buyerID int64, in usecase.PlaceOrderInput) (usecase.OrderView, error)
	ListBuyerOrders(ctx context.Context, buyerID int64) ([]usecase.OrderView, error)
	ListSellerSales(ctx context.Context, sellerID int64) ([]usecase.OrderView, error)
	GetOrder(ctx context.Context, requester model.Identity, orderID int64) (usecase.OrderView, error)
}

type OrderStatusService interface {
	UpdateStatus(ctx context.Context, actor model.Identity, orderID int64, newStatus string) (usecase.OrderView, error)
	History(ctx context.Context, requester model.Identity, orderID int64) ([]usecase.StatusChange, error)
}

type PaymentService interface {
	CreateCheckoutSession(ctx context.Context, buyerID int64) (usecase.CheckoutSession, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type ProductService interface {
	List(ctx context.Context, in usecase.ProductListInput) (usecase.ProductPage, error)
	Get(ctx context.Context, id int64) (model.Product, error)
}

var (
	_ CartService        = (*usecase.CartUsecase)(nil)
	_ OrderService       = (*usecase.OrderUsecase)(nil)
	_ OrderStatusService = (*usecase.OrderStatusUsecase)(nil)
	_ PaymentService     = (*usecase.PaymentUsecase)(nil)
	_ ProductService     = (*usecase.ProductUsecase)(nil)
)
