package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"kalamitraah/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type okResponse struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

func mustMakeJWT(t *testing.T, secret string, claims jwt.MapClaims, method jwt.SigningMethod) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = 9999999999
	}
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func protectedEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		id, _ := IdentityFrom(c)
		return c.JSON(http.StatusOK, okResponse{UserID: id.UserID, Role: string(id.Role)})
	}, mw...)
	return e
}

func run(e *echo.Echo, modify func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if modify != nil {
		modify(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var r errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&r))
	return r
}

func TestAuthJWT_MissingToken(t *testing.T) {
	rec := run(protectedEcho(AuthJWT(testSecret)), nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeError(t, rec)
	assert.False(t, body.Success)
	assert.Equal(t, "authentication token missing", body.Message)
}

func TestAuthJWT_BadScheme(t *testing.T) {
	rec := run(protectedEcho(AuthJWT(testSecret)), func(r *http.Request) {
		r.Header.Set("Authorization", "Token abc.def.ghi")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_InvalidTokens(t *testing.T) {
	tests := map[string]string{
		"bad signature":  mustMakeJWT(t, "wrong-secret", jwt.MapClaims{"id": 1, "role": "buyer"}, jwt.SigningMethodHS256),
		"wrong alg":      mustMakeJWT(t, testSecret, jwt.MapClaims{"id": 1, "role": "buyer"}, jwt.SigningMethodHS512),
		"expired":        mustMakeJWT(t, testSecret, jwt.MapClaims{"id": 1, "role": "buyer", "exp": 1}, jwt.SigningMethodHS256),
		"unknown role":   mustMakeJWT(t, testSecret, jwt.MapClaims{"id": 1, "role": "admin"}, jwt.SigningMethodHS256),
		"missing id":     mustMakeJWT(t, testSecret, jwt.MapClaims{"role": "buyer"}, jwt.SigningMethodHS256),
		"non numeric id": mustMakeJWT(t, testSecret, jwt.MapClaims{"id": "64f1c0ffee", "role": "buyer"}, jwt.SigningMethodHS256),
		"garbage":        "abc.def.ghi",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			rec := run(protectedEcho(AuthJWT(testSecret)), bearer(token))
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, "invalid or expired token", decodeError(t, rec).Message)
		})
	}
}

func TestAuthJWT_BearerSetsIdentity(t *testing.T) {
	token := mustMakeJWT(t, testSecret, jwt.MapClaims{"id": 123, "role": "seller"}, jwt.SigningMethodHS256)

	rec := run(protectedEcho(AuthJWT(testSecret)), bearer(token))

	require.Equal(t, http.StatusOK, rec.Code)
	var body okResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, int64(123), body.UserID)
	assert.Equal(t, "seller", body.Role)
}

func TestAuthJWT_CookieAndSubClaim(t *testing.T) {
	token := mustMakeJWT(t, testSecret, jwt.MapClaims{"sub": "77", "role": "Buyer"}, jwt.SigningMethodHS256)

	rec := run(protectedEcho(AuthJWT(testSecret)), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: TokenCookieName, Value: token})
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var body okResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, int64(77), body.UserID)
	assert.Equal(t, string(model.RoleBuyer), body.Role)
}

func TestRequireRole(t *testing.T) {
	buyerToken := mustMakeJWT(t, testSecret, jwt.MapClaims{"id": 1, "role": "buyer"}, jwt.SigningMethodHS256)
	sellerToken := mustMakeJWT(t, testSecret, jwt.MapClaims{"id": 2, "role": "seller"}, jwt.SigningMethodHS256)
	e := protectedEcho(AuthJWT(testSecret), RequireRole(model.RoleSeller))

	rec := run(e, bearer(buyerToken))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "access denied, seller only", decodeError(t, rec).Message)

	rec = run(e, bearer(sellerToken))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_WithoutIdentity(t *testing.T) {
	rec := run(protectedEcho(RequireRole(model.RoleBuyer)), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
