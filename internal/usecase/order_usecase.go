package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kalamitraah/internal/domain/model"
	repo "kalamitraah/internal/repository"

	"go.uber.org/zap"
)

// OrderUsecase is the order ledger: direct placement and the buyer/seller read side.
type OrderUsecase struct {
	tx         repo.TransactionManager
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	products   repo.ProductRepository
	cache      CartCache
	log        *zap.Logger
	now        func() time.Time
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	products repo.ProductRepository,
	cache CartCache,
	log *zap.Logger,
) *OrderUsecase {
	if cache == nil {
		cache = NoopCartCache
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderUsecase{
		tx:         tx,
		orders:     orders,
		orderItems: orderItems,
		products:   products,
		cache:      cache,
		log:        log,
		now:        time.Now,
	}
}

type PlaceOrderLine struct {
	ProductID int64
	Quantity  int64
}

type PlaceOrderInput struct {
	Lines           []PlaceOrderLine
	ShippingAddress model.ShippingAddress
}

type OrderLineView struct {
	ProductID int64  `json:"productId"`
	SellerID  int64  `json:"sellerId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
	// live catalog record, display only; omitted when not resolved or deleted
	Product *model.Product `json:"product,omitempty"`
}

type OrderView struct {
	ID              int64                 `json:"id"`
	BuyerID         int64                 `json:"buyerId"`
	Items           []OrderLineView       `json:"items"`
	TotalAmount     int64                 `json:"totalAmount"`
	PaymentStatus   model.PaymentStatus   `json:"paymentStatus"`
	OrderStatus     model.OrderStatus     `json:"orderStatus"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// PlaceOrder prices every line from the live catalog and creates a pending order.
// Either every line resolves and the order, its history row and the cart removal
// commit together, or nothing is written.
func (u *OrderUsecase) PlaceOrder(ctx context.Context, buyerID int64, in PlaceOrderInput) (OrderView, error) {
	if buyerID <= 0 {
		return OrderView{}, NewValidationError("invalid buyer")
	}
	if len(in.Lines) == 0 {
		return OrderView{}, NewValidationError("products and shipping address are required")
	}
	if !in.ShippingAddress.Complete() {
		return OrderView{}, NewValidationError("shipping address requires street, city, state and postal code")
	}
	ids := make([]int64, 0, len(in.Lines))
	for _, l := range in.Lines {
		if err := validateLine(l.ProductID, l.Quantity); err != nil {
			return OrderView{}, err
		}
		ids = append(ids, l.ProductID)
	}

	var (
		created model.Order
		lines   []model.OrderItem
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		catalog, err := r.Products().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}

		items := make([]model.OrderItem, 0, len(in.Lines))
		for _, l := range in.Lines {
			p, ok := catalog[l.ProductID]
			if !ok {
				return NewNotFoundError(fmt.Sprintf("product with id %d not found", l.ProductID))
			}
			items = append(items, model.OrderItem{
				ProductID: p.ID,
				SellerID:  p.SellerID,
				Name:      p.Name,
				UnitPrice: p.Price,
				Quantity:  l.Quantity,
			})
		}

		created, lines, err = createOrderTx(ctx, r, model.Order{
			BuyerID:         buyerID,
			PaymentStatus:   model.PaymentStatusPending,
			OrderStatus:     model.OrderStatusPending,
			ShippingAddress: in.ShippingAddress,
		}, items, u.now())
		return err
	})
	if err != nil {
		return OrderView{}, asUsecaseError(err)
	}

	if err := u.cache.Invalidate(ctx, buyerID); err != nil {
		u.log.Warn("cart cache invalidate failed", zap.Int64("buyer_id", buyerID), zap.Error(err))
	}
	u.log.Info("order placed",
		zap.Int64("order_id", created.ID),
		zap.Int64("buyer_id", buyerID),
		zap.Int64("total_amount", created.TotalAmount),
	)
	return toOrderView(created, lines, nil), nil
}

// ListBuyerOrders returns the buyer's orders newest first, each line carrying
// the current catalog product for display.
func (u *OrderUsecase) ListBuyerOrders(ctx context.Context, buyerID int64) ([]OrderView, error) {
	if buyerID <= 0 {
		return []OrderView{}, NewValidationError("invalid buyer")
	}
	orders, err := u.orders.ListByBuyerID(ctx, buyerID)
	if err != nil {
		return []OrderView{}, NewUnexpectedError(err)
	}
	return u.withItems(ctx, orders)
}

// ListSellerSales returns every order with at least one of the seller's lines, newest first.
func (u *OrderUsecase) ListSellerSales(ctx context.Context, sellerID int64) ([]OrderView, error) {
	if sellerID <= 0 {
		return []OrderView{}, NewValidationError("invalid seller")
	}
	orders, err := u.orders.ListBySellerID(ctx, sellerID)
	if err != nil {
		return []OrderView{}, NewUnexpectedError(err)
	}
	return u.withItems(ctx, orders)
}

// GetOrder returns one order if the requester is its buyer or sells one of its lines.
func (u *OrderUsecase) GetOrder(ctx context.Context, requester model.Identity, orderID int64) (OrderView, error) {
	if orderID <= 0 {
		return OrderView{}, NewValidationError("invalid order id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderView{}, NewNotFoundError("order not found")
	}
	if err != nil {
		return OrderView{}, NewUnexpectedError(err)
	}
	items, err := u.orderItems.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderView{}, NewUnexpectedError(err)
	}

	if !canView(requester, o, items) {
		return OrderView{}, NewForbiddenError("access denied")
	}
	return toOrderView(o, items, nil), nil
}

func canView(requester model.Identity, o model.Order, items []model.OrderItem) bool {
	switch requester.Role {
	case model.RoleBuyer:
		return o.BuyerID == requester.UserID
	case model.RoleSeller:
		return sellsAnyLine(items, requester.UserID)
	default:
		return false
	}
}

func sellsAnyLine(items []model.OrderItem, sellerID int64) bool {
	for _, it := range items {
		if it.SellerID == sellerID {
			return true
		}
	}
	return false
}

// withItems loads the lines of every order and resolves their live products.
func (u *OrderUsecase) withItems(ctx context.Context, orders []model.Order) ([]OrderView, error) {
	if len(orders) == 0 {
		return []OrderView{}, nil
	}

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	byOrder, err := u.orderItems.ListByOrderIDs(ctx, ids)
	if err != nil {
		return []OrderView{}, NewUnexpectedError(err)
	}

	var productIDs []int64
	for _, o := range orders {
		for _, it := range byOrder[o.ID] {
			productIDs = append(productIDs, it.ProductID)
		}
	}
	var catalog map[int64]model.Product
	if len(productIDs) > 0 {
		catalog, err = u.products.FindByIDs(ctx, productIDs)
		if err != nil {
			return []OrderView{}, NewUnexpectedError(err)
		}
	}

	out := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderView(o, byOrder[o.ID], catalog))
	}
	return out, nil
}

func toOrderView(o model.Order, items []model.OrderItem, catalog map[int64]model.Product) OrderView {
	v := OrderView{
		ID:              o.ID,
		BuyerID:         o.BuyerID,
		Items:           make([]OrderLineView, 0, len(items)),
		TotalAmount:     o.TotalAmount,
		PaymentStatus:   o.PaymentStatus,
		OrderStatus:     o.OrderStatus,
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	// stored lines were summed with checked math when the order was created
	for _, it := range items {
		line := OrderLineView{
			ProductID: it.ProductID,
			SellerID:  it.SellerID,
			Name:      it.Name,
			Price:     it.UnitPrice,
			Quantity:  it.Quantity,
			Subtotal:  it.UnitPrice * it.Quantity,
		}
		if p, ok := catalog[it.ProductID]; ok {
			line.Product = &p
		}
		v.Items = append(v.Items, line)
	}
	return v
}
