package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"kalamitraah/internal/domain/model"
	"kalamitraah/internal/middleware"
	"kalamitraah/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const testUserHeader = "X-Test-User"

// fakeAuth reads "<id>:<role>" from testUserHeader in place of a JWT.
func fakeAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		v := c.Request().Header.Get(testUserHeader)
		if v == "" {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication token missing"})
		}
		parts := strings.SplitN(v, ":", 2)
		id, _ := strconv.ParseInt(parts[0], 10, 64)
		c.Set(middleware.CtxIdentityKey, model.Identity{UserID: id, Role: model.Role(parts[1])})
		return next(c)
	}
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	return e
}

func do(e *echo.Echo, method, path, user, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if user != "" {
		req.Header.Set(testUserHeader, user)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}
