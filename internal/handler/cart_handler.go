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

// /cart HTTP
type CartHandler struct {
	uc  CartService
	log *zap.Logger
}

func NewCartHandler(uc CartService, log *zap.Logger) *CartHandler {
	return &CartHandler{uc: uc, log: nopIfNil(log)}
}

type CartItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"required,gte=1,lte=10000"`
}

func (h *CartHandler) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	g := e.Group("/cart", auth, middleware.RequireRole(model.RoleBuyer))

	g.GET("", h.getCart)
	g.POST("/add", h.addItem)
	g.PUT("/update", h.updateItem)
	g.DELETE("/remove/:productId", h.removeItem)
}

func (h *CartHandler) getCart(c echo.Context) error {
	buyerID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.GetCart(c.Request().Context(), buyerID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return writeOK(c, http.StatusOK, "Cart fetched successfully", out)
}

func (h *CartHandler) addItem(c echo.Context) error {
	buyerID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}

	var req CartItemRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, h.log, usecase.NewValidationError("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, h.log, err)
	}

	out, err := h.uc.AddItem(c.Request().Context(), buyerID, usecase.AddItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return writeOK(c, http.StatusOK, "Item added to cart successfully", out)
}

func (h *CartHandler) updateItem(c echo.Context) error {
	buyerID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}

	var req CartItemRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, h.log, usecase.NewValidationError("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, h.log, err)
	}

	out, err := h.uc.UpdateItem(c.Request().Context(), buyerID, usecase.UpdateItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return writeOK(c, http.StatusOK, "Cart updated successfully", out)
}

func (h *CartHandler) removeItem(c echo.Context) error {
	buyerID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil || productID <= 0 {
		return writeError(c, h.log, usecase.NewValidationError("invalid product id"))
	}

	out, err := h.uc.RemoveItem(c.Request().Context(), buyerID, productID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return writeOK(c, http.StatusOK, "Item removed from cart successfully", out)
}
