package usecase

import (
	"context"
	"sort"
	"time"

	"kalamitraah/internal/domain/model"
	repo "kalamitraah/internal/repository"
)

// memStore is an in-memory backing store for every port. WithinTx restores a
// snapshot when fn fails, so rollback behaviour can be asserted.
type memStore struct {
	nextID     int64
	products   map[int64]model.Product
	carts      map[int64]model.Cart // by buyer
	cartItems  map[int64][]model.CartItem
	orders     map[int64]model.Order
	orderItems map[int64][]model.OrderItem
	history    []model.BuyerOrder
	processed  map[string]model.ProcessedEvent
	outbox     []model.OutboxEvent
	audits     []model.AuditLog
	txCalls    int
}

func newMemStore() *memStore {
	return &memStore{
		products:   map[int64]model.Product{},
		carts:      map[int64]model.Cart{},
		cartItems:  map[int64][]model.CartItem{},
		orders:     map[int64]model.Order{},
		orderItems: map[int64][]model.OrderItem{},
		processed:  map[string]model.ProcessedEvent{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) addProduct(p model.Product) model.Product {
	if p.ID == 0 {
		p.ID = s.id()
	}
	s.products[p.ID] = p
	return p
}

func (s *memStore) snapshot() *memStore {
	c := &memStore{
		nextID:     s.nextID,
		products:   map[int64]model.Product{},
		carts:      map[int64]model.Cart{},
		cartItems:  map[int64][]model.CartItem{},
		orders:     map[int64]model.Order{},
		orderItems: map[int64][]model.OrderItem{},
		history:    append([]model.BuyerOrder(nil), s.history...),
		processed:  map[string]model.ProcessedEvent{},
		outbox:     append([]model.OutboxEvent(nil), s.outbox...),
		audits:     append([]model.AuditLog(nil), s.audits...),
		txCalls:    s.txCalls,
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.carts {
		c.carts[k] = v
	}
	for k, v := range s.cartItems {
		c.cartItems[k] = append([]model.CartItem(nil), v...)
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.orderItems {
		c.orderItems[k] = append([]model.OrderItem(nil), v...)
	}
	for k, v := range s.processed {
		c.processed[k] = v
	}
	return c
}

func (s *memStore) restore(c *memStore) {
	calls := s.txCalls
	*s = *c
	s.txCalls = calls
}

// TransactionManager / TxRepos

func (s *memStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.txCalls++
	before := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(before)
		return err
	}
	return nil
}

func (s *memStore) Orders() repo.OrderRepository                   { return memOrders{s} }
func (s *memStore) OrderItems() repo.OrderItemRepository           { return memOrderItems{s} }
func (s *memStore) BuyerOrders() repo.BuyerOrderRepository         { return memBuyerOrders{s} }
func (s *memStore) Carts() repo.CartRepository                     { return memCarts{s} }
func (s *memStore) CartItems() repo.CartItemRepository             { return memCarts{s} }
func (s *memStore) Products() repo.ProductRepository               { return memProducts{s} }
func (s *memStore) ProcessedEvents() repo.ProcessedEventRepository { return memProcessed{s} }
func (s *memStore) Outbox() repo.OutboxRepository                  { return memOutbox{s} }
func (s *memStore) AuditLogs() repo.AuditLogRepository             { return memAudits{s} }

// products

type memProducts struct{ s *memStore }

func (r memProducts) FindByID(ctx context.Context, id int64) (model.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r memProducts) FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	out := map[int64]model.Product{}
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r memProducts) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var all []model.Product
	for _, p := range r.s.products {
		if q.SellerID != nil && p.SellerID != *q.SellerID {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	start := (q.Page - 1) * q.Limit
	if start >= len(all) {
		return []model.Product{}, total, nil
	}
	end := start + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

// carts and cart items

type memCarts struct{ s *memStore }

func (r memCarts) GetOrCreateByBuyerID(ctx context.Context, buyerID int64) (model.Cart, error) {
	if c, ok := r.s.carts[buyerID]; ok {
		return c, nil
	}
	c := model.Cart{ID: r.s.id(), BuyerID: buyerID}
	r.s.carts[buyerID] = c
	return c, nil
}

func (r memCarts) FindByBuyerID(ctx context.Context, buyerID int64) (model.Cart, error) {
	c, ok := r.s.carts[buyerID]
	if !ok {
		return model.Cart{}, repo.ErrNotFound
	}
	return c, nil
}

func (r memCarts) DeleteByBuyerID(ctx context.Context, buyerID int64) error {
	if c, ok := r.s.carts[buyerID]; ok {
		delete(r.s.cartItems, c.ID)
		delete(r.s.carts, buyerID)
	}
	return nil
}

func (r memCarts) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	return append([]model.CartItem{}, r.s.cartItems[cartID]...), nil
}

func (r memCarts) UpsertByCartAndProduct(ctx context.Context, item model.CartItem) error {
	items := r.s.cartItems[item.CartID]
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity += item.Quantity
			return nil
		}
	}
	item.ID = r.s.id()
	r.s.cartItems[item.CartID] = append(items, item)
	return nil
}

func (r memCarts) UpdateQuantity(ctx context.Context, cartID int64, productID int64, qty int64) error {
	items := r.s.cartItems[cartID]
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = qty
			return nil
		}
	}
	return repo.ErrNotFound
}

func (r memCarts) DeleteByCartAndProduct(ctx context.Context, cartID int64, productID int64) error {
	items := r.s.cartItems[cartID]
	for i := range items {
		if items[i].ProductID == productID {
			r.s.cartItems[cartID] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

// orders

type memOrders struct{ s *memStore }

func (r memOrders) Create(ctx context.Context, o model.Order) (int64, error) {
	if o.CheckoutSessionID != nil {
		for _, existing := range r.s.orders {
			if existing.CheckoutSessionID != nil && *existing.CheckoutSessionID == *o.CheckoutSessionID {
				return 0, repo.ErrDuplicate
			}
		}
	}
	o.ID = r.s.id()
	r.s.orders[o.ID] = o
	return o.ID, nil
}

func (r memOrders) FindByID(ctx context.Context, id int64) (model.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (r memOrders) ListByBuyerID(ctx context.Context, buyerID int64) ([]model.Order, error) {
	return r.list(func(o model.Order) bool { return o.BuyerID == buyerID }), nil
}

func (r memOrders) ListBySellerID(ctx context.Context, sellerID int64) ([]model.Order, error) {
	return r.list(func(o model.Order) bool {
		for _, it := range r.s.orderItems[o.ID] {
			if it.SellerID == sellerID {
				return true
			}
		}
		return false
	}), nil
}

func (r memOrders) list(keep func(model.Order) bool) []model.Order {
	out := []model.Order{}
	for _, o := range r.s.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r memOrders) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) error {
	o, ok := r.s.orders[id]
	if !ok {
		return repo.ErrNotFound
	}
	o.OrderStatus = status
	r.s.orders[id] = o
	return nil
}

type memOrderItems struct{ s *memStore }

func (r memOrderItems) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	for _, it := range items {
		it.ID = r.s.id()
		it.OrderID = orderID
		r.s.orderItems[orderID] = append(r.s.orderItems[orderID], it)
	}
	return nil
}

func (r memOrderItems) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	return append([]model.OrderItem{}, r.s.orderItems[orderID]...), nil
}

func (r memOrderItems) ListByOrderIDs(ctx context.Context, ids []int64) (map[int64][]model.OrderItem, error) {
	out := map[int64][]model.OrderItem{}
	for _, id := range ids {
		if items, ok := r.s.orderItems[id]; ok {
			out[id] = append([]model.OrderItem{}, items...)
		}
	}
	return out, nil
}

type memBuyerOrders struct{ s *memStore }

func (r memBuyerOrders) Append(ctx context.Context, buyerID int64, orderID int64) error {
	r.s.history = append(r.s.history, model.BuyerOrder{ID: r.s.id(), BuyerID: buyerID, OrderID: orderID})
	return nil
}

type memProcessed struct{ s *memStore }

func (r memProcessed) MarkProcessed(ctx context.Context, ev model.ProcessedEvent) (bool, error) {
	if _, ok := r.s.processed[ev.EventID]; ok {
		return false, nil
	}
	r.s.processed[ev.EventID] = ev
	return true, nil
}

type memOutbox struct{ s *memStore }

func (r memOutbox) Create(ctx context.Context, ev model.OutboxEvent) error {
	r.s.outbox = append(r.s.outbox, ev)
	return nil
}

func (r memOutbox) ListUnpublished(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	out := []model.OutboxEvent{}
	for _, ev := range r.s.outbox {
		if ev.PublishedAt == nil && len(out) < limit {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r memOutbox) MarkPublished(ctx context.Context, id string, at time.Time) error {
	for i := range r.s.outbox {
		if r.s.outbox[i].ID == id {
			r.s.outbox[i].PublishedAt = &at
			return nil
		}
	}
	return repo.ErrNotFound
}

type memAudits struct{ s *memStore }

func (r memAudits) Create(ctx context.Context, log model.AuditLog) error {
	r.s.audits = append(r.s.audits, log)
	return nil
}

func (r memAudits) ListByOrderID(ctx context.Context, orderID int64) ([]model.AuditLog, error) {
	out := []model.AuditLog{}
	for _, l := range r.s.audits {
		if l.ResourceType == model.AuditResourceOrder && l.ResourceID == orderID {
			out = append(out, l)
		}
	}
	return out, nil
}

// memCache is a map-backed CartCache. beforeSet runs inside Set ahead of the
// generation check, standing in for a concurrent writer.
type memCache struct {
	views       map[int64]CartView
	gens        map[int64]int64
	invalidated int
	skipped     int
	beforeSet   func(buyerID int64)
}

func newMemCache() *memCache {
	return &memCache{views: map[int64]CartView{}, gens: map[int64]int64{}}
}

func (c *memCache) Get(ctx context.Context, buyerID int64) (CartView, bool, error) {
	v, ok := c.views[buyerID]
	return v, ok, nil
}

func (c *memCache) Generation(ctx context.Context, buyerID int64) (int64, error) {
	return c.gens[buyerID], nil
}

func (c *memCache) Set(ctx context.Context, buyerID int64, gen int64, v CartView) error {
	if c.beforeSet != nil {
		c.beforeSet(buyerID)
	}
	if c.gens[buyerID] != gen {
		c.skipped++
		return nil
	}
	c.views[buyerID] = v
	return nil
}

func (c *memCache) Invalidate(ctx context.Context, buyerID int64) error {
	c.invalidated++
	c.gens[buyerID]++
	delete(c.views, buyerID)
	return nil
}
