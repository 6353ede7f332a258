package handler

import (
	"io"
	"net/http"

	"kalamitraah/internal/domain/model"
	"kalamitraah/internal/middleware"
	"kalamitraah/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	StripeSignatureHeader = "Stripe-Signature"
	WebhookPath           = "/payment/webhook"

	// Stripe caps webhook payloads well below this.
	maxWebhookBody = 1 << 20
)

type PaymentHandler struct {
	uc  PaymentService
	log *zap.Logger
}

func NewPaymentHandler(uc PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{uc: uc, log: nopIfNil(log)}
}

type checkoutSessionData struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

type checkoutSessionResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	URL     string              `json:"url"`
	Data    checkoutSessionData `json:"data"`
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	e.POST("/payment/create-checkout-session", h.createCheckoutSession, auth, middleware.RequireRole(model.RoleBuyer))

	// no auth: Stripe authenticates with the signature header
	e.POST(WebhookPath, h.webhook)
}

func (h *PaymentHandler) createCheckoutSession(c echo.Context) error {
	buyerID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}

	s, err := h.uc.CreateCheckoutSession(c.Request().Context(), buyerID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, checkoutSessionResponse{
		Success: true,
		Message: "Checkout session created",
		URL:     s.URL,
		Data:    checkoutSessionData{URL: s.URL, SessionID: s.ID},
	})
}

// webhook needs the raw body; a re-encoded payload would fail signature checks.
func (h *PaymentHandler) webhook(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return writeError(c, h.log, usecase.NewValidationError("failed to read request body"))
	}

	if err := h.uc.HandleWebhook(c.Request().Context(), payload, c.Request().Header.Get(StripeSignatureHeader)); err != nil {
		if usecase.IsKind(err, usecase.KindExternal) {
			h.log.Warn("webhook rejected", zap.Error(err))
		}
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
