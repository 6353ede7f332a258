package handler

import (
	"net/http"
	"strconv"

	"kalamitraah/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// public catalog
type ProductHandler struct {
	uc  ProductService
	log *zap.Logger
}

func NewProductHandler(uc ProductService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{uc: uc, log: nopIfNil(log)}
}

func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/products", h.list)
	e.GET("/products/:id", h.detail)
}

func (h *ProductHandler) list(c echo.Context) error {
	var in usecase.ProductListInput

	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return writeError(c, h.log, usecase.NewValidationError("invalid page"))
		}
		in.Page = p
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return writeError(c, h.log, usecase.NewValidationError("invalid limit"))
		}
		in.Limit = l
	}
	if v := c.QueryParam("seller_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return writeError(c, h.log, usecase.NewValidationError("invalid seller_id"))
		}
		in.SellerID = &id
	}

	out, err := h.uc.List(c.Request().Context(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return writeOK(c, http.StatusOK, "Products fetched successfully", out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return writeError(c, h.log, usecase.NewValidationError("invalid product id"))
	}

	p, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return writeOK(c, http.StatusOK, "Product fetched successfully", p)
}
