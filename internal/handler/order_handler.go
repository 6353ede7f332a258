package handler

import (
	"net/http"
	"strconv"

	"kalamitraah/internal/domain/model"
	"kalamitraah/internal/middleware"
	"kalamitraah/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// /orders HTTP
type OrderHandler struct {
	orders OrderService
	status OrderStatusService
	log    *zap.Logger
}

func NewOrderHandler(orders OrderService, status OrderStatusService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, status: status, log: nopIfNil(log)}
}

type OrderLineRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"required,gte=1,lte=10000"`
}

// ShippingAddressRequest also accepts the older address/zipCode field names.
type ShippingAddressRequest struct {
	Street     string `json:"street"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	ZipCode    string `json:"zipCode"`
}

func (r ShippingAddressRequest) toModel() model.ShippingAddress {
	street := r.Street
	if street == "" {
		street = r.Address
	}
	postal := r.PostalCode
	if postal == "" {
		postal = r.ZipCode
	}
	return model.ShippingAddress{
		Street:     street,
		City:       r.City,
		State:      r.State,
		PostalCode: postal,
	}
}

type PlaceOrderRequest struct {
	Products        []OrderLineRequest     `json:"products" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddressRequest `json:"shippingAddress"`
}

type UpdateStatusRequest struct {
	NewStatus string `json:"newStatus" validate:"required"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	buyer := middleware.RequireRole(model.RoleBuyer)
	seller := middleware.RequireRole(model.RoleSeller)

	g := e.Group("/orders", auth)

	g.POST("/place", h.placeOrder, buyer)
	g.POST("/place-order", h.placeOrder, buyer)
	g.GET("/my-orders", h.myOrders, buyer)
	g.GET("/sales", h.sales, seller)
	g.GET("/seller-sales", h.sales, seller)
	g.GET("/:orderId", h.detail)
	g.GET("/:orderId/history", h.history)
	g.PUT("/:orderId/status", h.updateStatus, seller)
	g.PATCH("/:orderId/status", h.updateStatus, seller)
}

func (h *OrderHandler) placeOrder(c echo.Context) error {
	buyerID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}

	var req PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, h.log, usecase.NewValidationError("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, h.log, err)
	}

	in := usecase.PlaceOrderInput{
		Lines:           make([]usecase.PlaceOrderLine, 0, len(req.Products)),
		ShippingAddress: req.ShippingAddress.toModel(),
	}
	for _, p := range req.Products {
		in.Lines = append(in.Lines, usecase.PlaceOrderLine{ProductID: p.ProductID, Quantity: p.Quantity})
	}

	out, err := h.orders.PlaceOrder(c.Request().Context(), buyerID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return writeOK(c, http.StatusCreated, "Order placed successfully", out)
}

func (h *OrderHandler) myOrders(c echo.Context) error {
	buyerID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.orders.ListBuyerOrders(c.Request().Context(), buyerID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return writeOK(c, http.StatusOK, "Orders fetched successfully", out)
}

func (h *OrderHandler) sales(c echo.Context) error {
	sellerID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.orders.ListSellerSales(c.Request().Context(), sellerID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return writeOK(c, http.StatusOK, "Sales fetched successfully", out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return unauthorized(c)
	}

	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil || orderID <= 0 {
		return writeError(c, h.log, usecase.NewValidationError("invalid order id"))
	}

	out, err := h.orders.GetOrder(c.Request().Context(), who, orderID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return writeOK(c, http.StatusOK, "Order fetched successfully", out)
}

func (h *OrderHandler) history(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return unauthorized(c)
	}
	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil || orderID <= 0 {
		return writeError(c, h.log, usecase.NewValidationError("invalid order id"))
	}

	out, err := h.status.History(c.Request().Context(), who, orderID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return writeOK(c, http.StatusOK, "Order history fetched successfully", out)
}

func (h *OrderHandler) updateStatus(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return unauthorized(c)
	}

	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil || orderID <= 0 {
		return writeError(c, h.log, usecase.NewValidationError("invalid order id"))
	}

	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, h.log, usecase.NewValidationError("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, h.log, err)
	}

	out, err := h.status.UpdateStatus(c.Request().Context(), who, orderID, req.NewStatus)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return writeOK(c, http.StatusOK, "Order status updated successfully", out)
}
