package usecase

import (
	"context"
	"errors"
	"time"

	"kalamitraah/internal/domain/model"
	repo "kalamitraah/internal/repository"

	"go.uber.org/zap"
)

const (
	PlaceholderImageURL = "https://placehold.co/400x400.png"
	// two-decimal currency: whole units to the smallest unit
	minorUnitsPerUnit = 100
)

// PaymentUsecase seeds checkout sessions from the cart and turns verified
// payment events into paid orders.
type PaymentUsecase struct {
	gateway  PaymentGateway
	tx       repo.TransactionManager
	carts    repo.CartRepository
	items    repo.CartItemRepository
	products repo.ProductRepository
	cache    CartCache
	log      *zap.Logger
	now      func() time.Time
}

func NewPaymentUsecase(
	gateway PaymentGateway,
	tx repo.TransactionManager,
	carts repo.CartRepository,
	items repo.CartItemRepository,
	products repo.ProductRepository,
	cache CartCache,
	log *zap.Logger,
) *PaymentUsecase {
	if cache == nil {
		cache = NoopCartCache
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentUsecase{
		gateway:  gateway,
		tx:       tx,
		carts:    carts,
		items:    items,
		products: products,
		cache:    cache,
		log:      log,
		now:      time.Now,
	}
}

// CreateCheckoutSession builds one gateway line per cart line, priced from the
// cart snapshot, and returns the gateway's redirect.
func (u *PaymentUsecase) CreateCheckoutSession(ctx context.Context, buyerID int64) (CheckoutSession, error) {
	if u.gateway == nil || !u.gateway.Configured() {
		return CheckoutSession{}, NewExternalError("payment processing is not configured", ErrPaymentNotConfigured)
	}
	if buyerID <= 0 {
		return CheckoutSession{}, NewValidationError("invalid buyer")
	}

	cart, err := u.carts.FindByBuyerID(ctx, buyerID)
	if errors.Is(err, repo.ErrNotFound) {
		return CheckoutSession{}, NewValidationError("cart is empty")
	}
	if err != nil {
		return CheckoutSession{}, NewUnexpectedError(err)
	}
	items, err := u.items.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CheckoutSession{}, NewUnexpectedError(err)
	}
	if len(items) == 0 {
		return CheckoutSession{}, NewValidationError("cart is empty")
	}

	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	// images only; price and name come from the snapshot
	catalog, err := u.products.FindByIDs(ctx, ids)
	if err != nil {
		return CheckoutSession{}, NewUnexpectedError(err)
	}

	req := CheckoutRequest{BuyerID: buyerID, Lines: make([]CheckoutLine, 0, len(items))}
	var totalMinor int64
	for _, it := range items {
		unitAmount, err := model.MulAmount(it.UnitPrice, minorUnitsPerUnit)
		if err != nil {
			return CheckoutSession{}, NewValidationError(amountLimitMessage)
		}
		lineMinor, err := model.MulAmount(unitAmount, it.Quantity)
		if err != nil {
			return CheckoutSession{}, NewValidationError(amountLimitMessage)
		}
		if totalMinor, err = model.AddAmount(totalMinor, lineMinor); err != nil {
			return CheckoutSession{}, NewValidationError(amountLimitMessage)
		}

		image := PlaceholderImageURL
		if p, ok := catalog[it.ProductID]; ok && p.FirstImage() != "" {
			image = p.FirstImage()
		}
		req.Lines = append(req.Lines, CheckoutLine{
			ProductID:  it.ProductID,
			SellerID:   it.SellerID,
			Name:       it.Name,
			ImageURL:   image,
			UnitAmount: unitAmount,
			Quantity:   it.Quantity,
		})
	}

	session, err := u.gateway.CreateCheckoutSession(ctx, req)
	if err != nil {
		u.log.Error("create checkout session failed", zap.Int64("buyer_id", buyerID), zap.Error(err))
		return CheckoutSession{}, NewExternalError("failed to create checkout session", err)
	}

	u.log.Info("checkout session created",
		zap.Int64("buyer_id", buyerID),
		zap.String("session_id", session.ID),
		zap.Int("lines", len(req.Lines)),
	)
	return session, nil
}

// HandleWebhook verifies the raw payload before anything else. A payload that
// fails verification is rejected with no state change.
func (u *PaymentUsecase) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if u.gateway == nil || !u.gateway.Configured() {
		return NewExternalError("payment processing is not configured", ErrPaymentNotConfigured)
	}

	ev, err := u.gateway.VerifyEvent(payload, signature)
	if err != nil {
		u.log.Warn("webhook signature verification failed", zap.Error(err))
		return NewSignatureError(err)
	}

	if ev.Type != EventCheckoutSessionCompleted {
		u.log.Debug("webhook event ignored", zap.String("event_id", ev.ID), zap.String("type", ev.Type))
		return nil
	}
	return u.HandlePaymentCompleted(ctx, ev)
}

var errSessionAlreadyMaterialized = errors.New("checkout session already has an order")

// HandlePaymentCompleted materializes a paid order from the buyer's cart snapshot,
// at most once per event id and once per checkout session.
func (u *PaymentUsecase) HandlePaymentCompleted(ctx context.Context, ev PaymentEvent) error {
	logger := u.log.With(zap.String("event_id", ev.ID), zap.String("session_id", ev.SessionID))
	if ev.BuyerID <= 0 {
		logger.Warn("checkout session without buyer metadata, acknowledging")
		return nil
	}

	var (
		created   model.Order
		duplicate bool
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		now := u.now()

		fresh, err := r.ProcessedEvents().MarkProcessed(ctx, model.ProcessedEvent{
			EventID:     ev.ID,
			EventType:   ev.Type,
			SessionID:   ev.SessionID,
			ProcessedAt: now,
		})
		if err != nil {
			return err
		}
		if !fresh {
			duplicate = true
			return nil
		}

		cart, err := r.Carts().FindByBuyerID(ctx, ev.BuyerID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return nil
		}

		items := make([]model.OrderItem, 0, len(cartItems))
		for _, it := range cartItems {
			items = append(items, model.OrderItem{
				ProductID: it.ProductID,
				SellerID:  it.SellerID,
				Name:      it.Name,
				UnitPrice: it.UnitPrice,
				Quantity:  it.Quantity,
			})
		}

		o := model.Order{
			BuyerID:       ev.BuyerID,
			PaymentStatus: model.PaymentStatusPaid,
			OrderStatus:   model.OrderStatusPending,
		}
		if ev.SessionID != "" {
			sid := ev.SessionID
			o.CheckoutSessionID = &sid
		}

		created, _, err = createOrderTx(ctx, r, o, items, now)
		if errors.Is(err, repo.ErrDuplicate) {
			return errSessionAlreadyMaterialized
		}
		return err
	})

	switch {
	case errors.Is(err, errSessionAlreadyMaterialized):
		logger.Info("checkout session already materialized, acknowledging")
		return nil
	case IsKind(err, KindValidation):
		// redelivery cannot fix an out-of-range snapshot
		logger.Error("cart snapshot cannot form an order, acknowledging", zap.Int64("buyer_id", ev.BuyerID), zap.Error(err))
		return nil
	case err != nil:
		logger.Error("materialize order failed", zap.Error(err))
		return asUsecaseError(err)
	case duplicate:
		logger.Info("duplicate webhook event, acknowledging")
		return nil
	case created.ID == 0:
		logger.Info("cart empty at webhook time, no order created", zap.Int64("buyer_id", ev.BuyerID))
		return nil
	}

	if err := u.cache.Invalidate(ctx, ev.BuyerID); err != nil {
		logger.Warn("cart cache invalidate failed", zap.Error(err))
	}
	logger.Info("order created from payment",
		zap.Int64("order_id", created.ID),
		zap.Int64("buyer_id", ev.BuyerID),
		zap.Int64("total_amount", created.TotalAmount),
	)
	return nil
}
