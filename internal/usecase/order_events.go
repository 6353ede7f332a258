package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"kalamitraah/internal/domain/model"
	repo "kalamitraah/internal/repository"

	"github.com/google/uuid"
)

// Body of order.created and order.status_changed messages.
type OrderEventPayload struct {
	OrderID        int64               `json:"orderId"`
	BuyerID        int64               `json:"buyerId"`
	SellerIDs      []int64             `json:"sellerIds"`
	TotalAmount    int64               `json:"totalAmount"`
	PaymentStatus  model.PaymentStatus `json:"paymentStatus"`
	OrderStatus    model.OrderStatus   `json:"orderStatus"`
	PreviousStatus model.OrderStatus   `json:"previousStatus,omitempty"`
	OccurredAt     time.Time           `json:"occurredAt"`
}

func newOrderEvent(eventType string, o model.Order, items []model.OrderItem, previous model.OrderStatus, at time.Time) (model.OutboxEvent, error) {
	body, err := json.Marshal(OrderEventPayload{
		OrderID:        o.ID,
		BuyerID:        o.BuyerID,
		SellerIDs:      sellerIDs(items),
		TotalAmount:    o.TotalAmount,
		PaymentStatus:  o.PaymentStatus,
		OrderStatus:    o.OrderStatus,
		PreviousStatus: previous,
		OccurredAt:     at.UTC(),
	})
	if err != nil {
		return model.OutboxEvent{}, fmt.Errorf("marshal %s: %w", eventType, err)
	}
	return model.OutboxEvent{
		ID:          uuid.NewString(),
		AggregateID: strconv.FormatInt(o.ID, 10),
		EventType:   eventType,
		Payload:     string(body),
		CreatedAt:   at,
	}, nil
}

func sellerIDs(items []model.OrderItem) []int64 {
	seen := make(map[int64]struct{}, len(items))
	out := make([]int64, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.SellerID]; ok {
			continue
		}
		seen[it.SellerID] = struct{}{}
		out = append(out, it.SellerID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// createOrderTx writes an order and everything that must commit with it:
// lines, the buyer's history row, the order.created event and the cart removal.
// Storage errors are returned unwrapped so callers can inspect repo.ErrDuplicate.
func createOrderTx(ctx context.Context, r repo.TxRepos, o model.Order, items []model.OrderItem, now time.Time) (model.Order, []model.OrderItem, error) {
	total, err := model.SumOrderItems(items)
	if err != nil {
		return model.Order{}, nil, NewValidationError(amountLimitMessage)
	}
	o.TotalAmount = total
	o.CreatedAt = now
	o.UpdatedAt = now

	id, err := r.Orders().Create(ctx, o)
	if err != nil {
		return model.Order{}, nil, err
	}
	o.ID = id

	for i := range items {
		items[i].OrderID = id
		items[i].CreatedAt = now
	}
	if err := r.OrderItems().CreateBulk(ctx, id, items); err != nil {
		return model.Order{}, nil, err
	}
	if err := r.BuyerOrders().Append(ctx, o.BuyerID, id); err != nil {
		return model.Order{}, nil, err
	}

	ev, err := newOrderEvent(model.EventOrderCreated, o, items, "", now)
	if err != nil {
		return model.Order{}, nil, err
	}
	if err := r.Outbox().Create(ctx, ev); err != nil {
		return model.Order{}, nil, err
	}

	if err := r.Carts().DeleteByBuyerID(ctx, o.BuyerID); err != nil {
		return model.Order{}, nil, err
	}
	return o, items, nil
}
