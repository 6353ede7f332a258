package handler

import (
	"net/http"

	"kalamitraah/internal/middleware"
	"kalamitraah/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeOK(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// writeError renders err in the error envelope. Causes of 5xx errors are
// logged and never sent to the client.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	if err == nil {
		return nil
	}
	ae, ok := usecase.AsAppError(err)
	if !ok {
		ae = &usecase.AppError{Kind: usecase.KindUnexpected, Status: http.StatusInternalServerError, Message: "internal server error", Err: err}
	}
	if ae.Status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.String("kind", string(ae.Kind)),
			zap.Error(ae.Err),
		)
	}
	return c.JSON(ae.Status, ErrorResponse{Success: false, Message: ae.Message})
}

func identity(c echo.Context) (int64, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok || id.UserID <= 0 {
		return 0, false
	}
	return id.UserID, true
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Message: "unauthorized"})
}

func nopIfNil(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
