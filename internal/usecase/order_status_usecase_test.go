package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"kalamitraah/internal/domain/model"
	repo "kalamitraah/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TxManagerMock runs fn inline against fixed repos.
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type statusTxRepos struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	outbox     repo.OutboxRepository
	audits     repo.AuditLogRepository
}

func (r *statusTxRepos) Orders() repo.OrderRepository                   { return r.orders }
func (r *statusTxRepos) OrderItems() repo.OrderItemRepository           { return r.orderItems }
func (r *statusTxRepos) Outbox() repo.OutboxRepository                  { return r.outbox }
func (r *statusTxRepos) AuditLogs() repo.AuditLogRepository             { return r.audits }
func (r *statusTxRepos) BuyerOrders() repo.BuyerOrderRepository         { return nil }
func (r *statusTxRepos) Carts() repo.CartRepository                     { return nil }
func (r *statusTxRepos) CartItems() repo.CartItemRepository             { return nil }
func (r *statusTxRepos) Products() repo.ProductRepository               { return nil }
func (r *statusTxRepos) ProcessedEvents() repo.ProcessedEventRepository { return nil }

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) Create(ctx context.Context, o model.Order) (int64, error) {
	panic("not used in OrderStatusUsecase tests")
}

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByBuyerID(ctx context.Context, buyerID int64) ([]model.Order, error) {
	panic("not used in OrderStatusUsecase tests")
}

func (m *OrderRepoMock) ListBySellerID(ctx context.Context, sellerID int64) ([]model.Order, error) {
	panic("not used in OrderStatusUsecase tests")
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	panic("not used in OrderStatusUsecase tests")
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *OrderItemRepoMock) ListByOrderIDs(ctx context.Context, ids []int64) (map[int64][]model.OrderItem, error) {
	panic("not used in OrderStatusUsecase tests")
}

type OutboxRepoMock struct{ mock.Mock }

func (m *OutboxRepoMock) Create(ctx context.Context, ev model.OutboxEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *OutboxRepoMock) ListUnpublished(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	panic("not used in OrderStatusUsecase tests")
}

func (m *OutboxRepoMock) MarkPublished(ctx context.Context, id string, at time.Time) error {
	panic("not used in OrderStatusUsecase tests")
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.AuditLog, error) {
	panic("not used in OrderStatusUsecase tests")
}

type statusMocks struct {
	tx     *TxManagerMock
	orders *OrderRepoMock
	items  *OrderItemRepoMock
	outbox *OutboxRepoMock
	audits *AuditRepoMock
}

func newStatusUsecase() (*OrderStatusUsecase, statusMocks) {
	m := statusMocks{
		orders: &OrderRepoMock{},
		items:  &OrderItemRepoMock{},
		outbox: &OutboxRepoMock{},
		audits: &AuditRepoMock{},
	}
	m.tx = &TxManagerMock{Repos: &statusTxRepos{orders: m.orders, orderItems: m.items, outbox: m.outbox, audits: m.audits}}
	return NewOrderStatusUsecase(m.tx, nil), m
}

var seller = model.Identity{UserID: 7, Role: model.RoleSeller}

func TestUpdateStatus_RejectsInvalidTarget(t *testing.T) {
	for _, status := range []string{"pending", "lost", ""} {
		t.Run(status, func(t *testing.T) {
			uc, m := newStatusUsecase()
			ctx := context.Background()

			m.tx.On("WithinTx", ctx).Return(nil).Once()
			m.orders.On("FindByID", ctx, int64(10)).Return(model.Order{ID: 10, OrderStatus: model.OrderStatusPending}, nil).Once()
			m.items.On("ListByOrderID", ctx, int64(10)).Return([]model.OrderItem{{SellerID: 7}}, nil).Once()

			_, err := uc.UpdateStatus(ctx, seller, 10, status)

			ae, ok := AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, KindValidation, ae.Kind)
			assert.Equal(t, "invalid status provided", ae.Message)
			m.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateStatus_LookupAndOwnershipBeforeTarget(t *testing.T) {
	uc, m := newStatusUsecase()
	ctx := context.Background()

	m.tx.On("WithinTx", ctx).Return(nil).Twice()
	m.orders.On("FindByID", ctx, int64(404)).Return(model.Order{}, repo.ErrNotFound).Once()
	m.orders.On("FindByID", ctx, int64(10)).Return(model.Order{ID: 10}, nil).Once()
	m.items.On("ListByOrderID", ctx, int64(10)).Return([]model.OrderItem{{SellerID: 8}}, nil).Once()

	_, err := uc.UpdateStatus(ctx, seller, 404, "lost")
	assert.True(t, IsKind(err, KindNotFound))

	_, err = uc.UpdateStatus(ctx, seller, 10, "lost")
	assert.True(t, IsKind(err, KindForbidden))
}

func TestUpdateStatus_BuyerIsForbidden(t *testing.T) {
	uc, m := newStatusUsecase()

	_, err := uc.UpdateStatus(context.Background(), model.Identity{UserID: 7, Role: model.RoleBuyer}, 1, "shipped")

	assert.True(t, IsKind(err, KindForbidden))
	m.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	uc, m := newStatusUsecase()
	ctx := context.Background()

	m.tx.On("WithinTx", ctx).Return(nil).Once()
	m.orders.On("FindByID", ctx, int64(10)).Return(model.Order{}, repo.ErrNotFound).Once()

	_, err := uc.UpdateStatus(ctx, seller, 10, "shipped")

	assert.True(t, IsKind(err, KindNotFound))
	m.items.AssertNotCalled(t, "ListByOrderID", mock.Anything, mock.Anything)
}

func TestUpdateStatus_SellerWithoutLinesIsForbidden(t *testing.T) {
	uc, m := newStatusUsecase()
	ctx := context.Background()

	m.tx.On("WithinTx", ctx).Return(nil).Once()
	m.orders.On("FindByID", ctx, int64(10)).Return(model.Order{ID: 10, OrderStatus: model.OrderStatusPending}, nil).Once()
	m.items.On("ListByOrderID", ctx, int64(10)).Return([]model.OrderItem{{SellerID: 8}, {SellerID: 9}}, nil).Once()

	_, err := uc.UpdateStatus(ctx, seller, 10, "shipped")

	assert.True(t, IsKind(err, KindForbidden))
	m.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	m.audits.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateStatus_OwnsOneLine_UpdatesAuditsAndEmits(t *testing.T) {
	uc, m := newStatusUsecase()
	ctx := context.Background()

	m.tx.On("WithinTx", ctx).Return(nil).Once()
	m.orders.On("FindByID", ctx, int64(10)).Return(model.Order{ID: 10, BuyerID: 42, TotalAmount: 800, OrderStatus: model.OrderStatusPending}, nil).Once()
	m.items.On("ListByOrderID", ctx, int64(10)).Return([]model.OrderItem{{SellerID: 7}, {SellerID: 8}}, nil).Once()
	m.orders.On("UpdateStatus", ctx, int64(10), model.OrderStatusShipped).Return(nil).Once()
	m.audits.On("Create", ctx, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 7 &&
			l.ActorRole == model.RoleSeller &&
			l.Action == model.AuditActionUpdateOrderStatus &&
			l.ResourceType == model.AuditResourceOrder &&
			l.ResourceID == 10 &&
			l.BeforeJSON == `{"orderStatus":"pending"}` &&
			l.AfterJSON == `{"orderStatus":"shipped"}`
	})).Return(nil).Once()
	m.outbox.On("Create", ctx, mock.MatchedBy(func(ev model.OutboxEvent) bool {
		return ev.EventType == model.EventOrderStatusChanged && ev.AggregateID == "10" && ev.ID != ""
	})).Return(nil).Once()

	out, err := uc.UpdateStatus(ctx, seller, 10, "shipped")

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, out.OrderStatus)
	assert.Equal(t, int64(800), out.TotalAmount)
	m.orders.AssertExpectations(t)
	m.audits.AssertExpectations(t)
	m.outbox.AssertExpectations(t)
}

func TestUpdateStatus_NoTransitionGraph(t *testing.T) {
	uc, m := newStatusUsecase()
	ctx := context.Background()

	m.tx.On("WithinTx", ctx).Return(nil).Once()
	m.orders.On("FindByID", ctx, int64(10)).Return(model.Order{ID: 10, OrderStatus: model.OrderStatusDelivered}, nil).Once()
	m.items.On("ListByOrderID", ctx, int64(10)).Return([]model.OrderItem{{SellerID: 7}}, nil).Once()
	m.orders.On("UpdateStatus", ctx, int64(10), model.OrderStatusCanceled).Return(nil).Once()
	m.audits.On("Create", ctx, mock.Anything).Return(nil).Once()
	m.outbox.On("Create", ctx, mock.Anything).Return(nil).Once()

	out, err := uc.UpdateStatus(ctx, seller, 10, "canceled")

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCanceled, out.OrderStatus)
}

func TestUpdateStatus_StorageFailureIsUnexpected(t *testing.T) {
	uc, m := newStatusUsecase()
	ctx := context.Background()

	m.tx.On("WithinTx", ctx).Return(nil).Once()
	m.orders.On("FindByID", ctx, int64(10)).Return(model.Order{ID: 10}, nil).Once()
	m.items.On("ListByOrderID", ctx, int64(10)).Return([]model.OrderItem{{SellerID: 7}}, nil).Once()
	m.orders.On("UpdateStatus", ctx, int64(10), model.OrderStatusReturned).Return(errors.New("connection reset")).Once()

	_, err := uc.UpdateStatus(ctx, seller, 10, "returned")

	assert.True(t, IsKind(err, KindUnexpected))
	ae, _ := AsAppError(err)
	assert.Equal(t, "internal server error", ae.Message)
}

func TestHistory_ListsAuditedChangesForViewers(t *testing.T) {
	s := newMemStore()
	ctx := context.Background()
	s.orders[10] = model.Order{ID: 10, BuyerID: 3, OrderStatus: model.OrderStatusPending}
	s.orderItems[10] = []model.OrderItem{{OrderID: 10, SellerID: 7, UnitPrice: 400, Quantity: 2}}
	uc := NewOrderStatusUsecase(s, nil)

	_, err := uc.UpdateStatus(ctx, seller, 10, "shipped")
	require.NoError(t, err)
	_, err = uc.UpdateStatus(ctx, seller, 10, "delivered")
	require.NoError(t, err)

	for _, who := range []model.Identity{seller, {UserID: 3, Role: model.RoleBuyer}} {
		history, err := uc.History(ctx, who, 10)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, model.OrderStatusPending, history[0].From)
		assert.Equal(t, model.OrderStatusShipped, history[0].To)
		assert.Equal(t, model.OrderStatusShipped, history[1].From)
		assert.Equal(t, model.OrderStatusDelivered, history[1].To)
		assert.Equal(t, int64(7), history[1].ChangedBy)
	}
}

func TestHistory_Authorization(t *testing.T) {
	s := newMemStore()
	ctx := context.Background()
	s.orders[10] = model.Order{ID: 10, BuyerID: 3}
	s.orderItems[10] = []model.OrderItem{{OrderID: 10, SellerID: 7}}
	uc := NewOrderStatusUsecase(s, nil)

	_, err := uc.History(ctx, model.Identity{UserID: 4, Role: model.RoleBuyer}, 10)
	assert.True(t, IsKind(err, KindForbidden), "other buyer")

	_, err = uc.History(ctx, model.Identity{UserID: 8, Role: model.RoleSeller}, 10)
	assert.True(t, IsKind(err, KindForbidden), "seller without lines")

	_, err = uc.History(ctx, seller, 11)
	assert.True(t, IsKind(err, KindNotFound))

	_, err = uc.History(ctx, seller, 0)
	assert.True(t, IsKind(err, KindValidation))
}
