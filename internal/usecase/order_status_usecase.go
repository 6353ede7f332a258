package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"kalamitraah/internal/domain/model"
	repo "kalamitraah/internal/repository"

	"go.uber.org/zap"
)

// OrderStatusUsecase applies seller-driven order status changes.
type OrderStatusUsecase struct {
	tx  repo.TransactionManager
	log *zap.Logger
	now func() time.Time
}

func NewOrderStatusUsecase(tx repo.TransactionManager, log *zap.Logger) *OrderStatusUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderStatusUsecase{tx: tx, log: log, now: time.Now}
}

type statusSnapshot struct {
	OrderStatus model.OrderStatus `json:"orderStatus"`
}

// UpdateStatus sets the order status for a seller owning at least one line.
// Any allowed target is written regardless of the current status; the change
// is audited and emitted as order.status_changed in the same transaction.
func (u *OrderStatusUsecase) UpdateStatus(ctx context.Context, actor model.Identity, orderID int64, newStatus string) (OrderView, error) {
	if actor.Role != model.RoleSeller {
		return OrderView{}, NewForbiddenError("only sellers can update order status")
	}
	if orderID <= 0 {
		return OrderView{}, NewValidationError("invalid order id")
	}

	var (
		updated model.Order
		lines   []model.OrderItem
		target  model.OrderStatus
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("order not found")
		}
		if err != nil {
			return err
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		if !sellsAnyLine(items, actor.UserID) {
			return NewForbiddenError("access denied, not the seller of these products")
		}

		// judged after ownership: a foreign order answers 403 whatever the body
		var ok bool
		if target, ok = model.ParseSellerTargetStatus(newStatus); !ok {
			return NewValidationError("invalid status provided")
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, target); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewNotFoundError("order not found")
			}
			return err
		}

		now := u.now()
		previous := o.OrderStatus
		o.OrderStatus = target
		o.UpdatedAt = now

		before, _ := json.Marshal(statusSnapshot{OrderStatus: previous})
		after, _ := json.Marshal(statusSnapshot{OrderStatus: target})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			ActorRole:    actor.Role,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   string(before),
			AfterJSON:    string(after),
			CreatedAt:    now,
		}); err != nil {
			return err
		}

		ev, err := newOrderEvent(model.EventOrderStatusChanged, o, items, previous, now)
		if err != nil {
			return err
		}
		if err := r.Outbox().Create(ctx, ev); err != nil {
			return err
		}

		updated, lines = o, items
		return nil
	})
	if err != nil {
		return OrderView{}, asUsecaseError(err)
	}

	u.log.Info("order status updated",
		zap.Int64("order_id", orderID),
		zap.Int64("seller_id", actor.UserID),
		zap.String("status", string(target)),
	)
	return toOrderView(updated, lines, nil), nil
}

// StatusChange is one audited status transition.
type StatusChange struct {
	From      model.OrderStatus `json:"from"`
	To        model.OrderStatus `json:"to"`
	ChangedBy int64             `json:"changedBy"`
	ChangedAt time.Time         `json:"changedAt"`
}

// History lists the order's status changes oldest first. Visible to the same
// requesters as the order itself.
func (u *OrderStatusUsecase) History(ctx context.Context, requester model.Identity, orderID int64) ([]StatusChange, error) {
	if orderID <= 0 {
		return []StatusChange{}, NewValidationError("invalid order id")
	}

	var out []StatusChange
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("order not found")
		}
		if err != nil {
			return err
		}
		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		if !canView(requester, o, items) {
			return NewForbiddenError("access denied")
		}

		logs, err := r.AuditLogs().ListByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		out = make([]StatusChange, 0, len(logs))
		for _, l := range logs {
			if l.Action != model.AuditActionUpdateOrderStatus {
				continue
			}
			var before, after statusSnapshot
			// rows are written by UpdateStatus; a malformed one still lists with blanks
			_ = json.Unmarshal([]byte(l.BeforeJSON), &before)
			_ = json.Unmarshal([]byte(l.AfterJSON), &after)
			out = append(out, StatusChange{
				From:      before.OrderStatus,
				To:        after.OrderStatus,
				ChangedBy: l.ActorUserID,
				ChangedAt: l.CreatedAt,
			})
		}
		return nil
	})
	if err != nil {
		return []StatusChange{}, asUsecaseError(err)
	}
	return out, nil
}
