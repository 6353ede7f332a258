package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"kalamitraah/internal/config"
	"kalamitraah/internal/usecase"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/webhook"
)

const (
	metaBuyerID   = "buyerId"
	metaProductID = "productId"
	metaSellerID  = "sellerId"
)

type GatewayConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	SuccessURL    string
	CancelURL     string
	// nil uses the default Stripe API backend
	Backend stripe.Backend
}

// GatewayConfigFrom derives the gateway settings from the app config.
func GatewayConfigFrom(cfg config.Config) GatewayConfig {
	return GatewayConfig{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		Currency:      cfg.Currency,
		SuccessURL:    cfg.FrontendURL + "/order-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     cfg.FrontendURL + "/order-canceled",
	}
}

// StripeGateway implements usecase.PaymentGateway. Credentials live on the
// instance; the package-level stripe.Key is never set.
type StripeGateway struct {
	conf     GatewayConfig
	sessions session.Client
}

var _ usecase.PaymentGateway = (*StripeGateway)(nil)

func NewStripeGateway(conf GatewayConfig) *StripeGateway {
	if conf.Backend == nil {
		conf.Backend = stripe.GetBackend(stripe.APIBackend)
	}
	return &StripeGateway{
		conf:     conf,
		sessions: session.Client{B: conf.Backend, Key: conf.SecretKey},
	}
}

func (g *StripeGateway) Configured() bool {
	return g.conf.SecretKey != ""
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req usecase.CheckoutRequest) (usecase.CheckoutSession, error) {
	if !g.Configured() {
		return usecase.CheckoutSession{}, usecase.ErrPaymentNotConfigured
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Lines))
	for _, l := range req.Lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(g.conf.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:   stripe.String(l.Name),
					Images: stripe.StringSlice([]string{l.ImageURL}),
					Metadata: map[string]string{
						metaProductID: strconv.FormatInt(l.ProductID, 10),
						metaSellerID:  strconv.FormatInt(l.SellerID, 10),
					},
				},
				UnitAmount: stripe.Int64(l.UnitAmount),
			},
			Quantity: stripe.Int64(l.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(g.conf.SuccessURL),
		CancelURL:          stripe.String(g.conf.CancelURL),
		Metadata: map[string]string{
			metaBuyerID: strconv.FormatInt(req.BuyerID, 10),
		},
	}
	params.Context = ctx

	s, err := g.sessions.New(params)
	if err != nil {
		return usecase.CheckoutSession{}, fmt.Errorf("stripe checkout session: %w", err)
	}
	return usecase.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// VerifyEvent checks the Stripe-Signature header against the raw payload.
// Any failure yields an error wrapping usecase.ErrInvalidSignature.
func (g *StripeGateway) VerifyEvent(payload []byte, signature string) (usecase.PaymentEvent, error) {
	if g.conf.WebhookSecret == "" {
		return usecase.PaymentEvent{}, fmt.Errorf("%w: webhook secret not set", usecase.ErrInvalidSignature)
	}

	ev, err := webhook.ConstructEventWithOptions(payload, signature, g.conf.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return usecase.PaymentEvent{}, fmt.Errorf("%w: %v", usecase.ErrInvalidSignature, err)
	}

	out := usecase.PaymentEvent{ID: ev.ID, Type: string(ev.Type)}
	if out.Type != usecase.EventCheckoutSessionCompleted || ev.Data == nil {
		return out, nil
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
		return usecase.PaymentEvent{}, fmt.Errorf("decode checkout session: %w", err)
	}
	out.SessionID = s.ID
	if id, err := strconv.ParseInt(s.Metadata[metaBuyerID], 10, 64); err == nil && id > 0 {
		out.BuyerID = id
	}
	return out, nil
}
