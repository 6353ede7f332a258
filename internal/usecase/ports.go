package usecase

import (
	"context"
	"errors"
)

// Read-through cache for cart views. Implementations must treat every
// error as a miss; the database stays authoritative.
//
// Every Invalidate advances the buyer's generation. Set stores the view only
// while the generation still equals gen, so a view loaded before a concurrent
// invalidation is never written back.
type CartCache interface {
	Get(ctx context.Context, buyerID int64) (CartView, bool, error)
	Generation(ctx context.Context, buyerID int64) (int64, error)
	Set(ctx context.Context, buyerID int64, gen int64, cart CartView) error
	Invalidate(ctx context.Context, buyerID int64) error
}

type noopCartCache struct{}

func (noopCartCache) Get(context.Context, int64) (CartView, bool, error) {
	return CartView{}, false, nil
}
func (noopCartCache) Generation(context.Context, int64) (int64, error)  { return 0, nil }
func (noopCartCache) Set(context.Context, int64, int64, CartView) error { return nil }
func (noopCartCache) Invalidate(context.Context, int64) error           { return nil }

// NoopCartCache is used when no cache backend is configured.
var NoopCartCache CartCache = noopCartCache{}

const EventCheckoutSessionCompleted = "checkout.session.completed"

var (
	// returned by PaymentGateway.VerifyEvent
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// returned when no gateway credentials were configured
	ErrPaymentNotConfigured = errors.New("payment processing is not configured")
)

// One purchasable line of a checkout session.
// UnitAmount is in the smallest currency unit.
type CheckoutLine struct {
	ProductID  int64
	SellerID   int64
	Name       string
	ImageURL   string
	UnitAmount int64
	Quantity   int64
}

type CheckoutRequest struct {
	BuyerID int64
	Lines   []CheckoutLine
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Verified gateway event, reduced to what order materialization needs.
type PaymentEvent struct {
	ID        string
	Type      string
	SessionID string
	// zero when the session carried no usable buyer metadata
	BuyerID int64
}

// Payment Gateway Adapter. It never moves money itself.
type PaymentGateway interface {
	Configured() bool
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	VerifyEvent(payload []byte, signature string) (PaymentEvent, error)
}
