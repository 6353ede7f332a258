package server

import (
	"net/http"

	"kalamitraah/internal/handler"
	"kalamitraah/internal/middleware"

	"github.com/labstack/echo/v4"
)

func registerRoutes(e *echo.Echo, jwtSecret string, h Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, handler.Response{Success: true, Message: "ok"})
	})

	auth := middleware.AuthJWT(jwtSecret)

	if h.Product != nil {
		h.Product.RegisterRoutes(e)
	}
	if h.Cart != nil {
		h.Cart.RegisterRoutes(e, auth)
	}
	if h.Order != nil {
		h.Order.RegisterRoutes(e, auth)
	}
	if h.Payment != nil {
		h.Payment.RegisterRoutes(e, auth)
	}
}
