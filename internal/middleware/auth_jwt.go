package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"kalamitraah/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxIdentityKey = "identity" // model.Identity

	TokenCookieName = "jwt"
)

// AuthJWT resolves the caller from the jwt cookie or an Authorization Bearer
// header. A missing token is 401; a token that fails verification or carries
// no usable id/role is 403.
func AuthJWT(secret string) echo.MiddlewareFunc {
	key := []byte(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawToken := tokenFromRequest(c)
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("authentication token missing"))
			}

			token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, errors.New("unexpected signing method")
				}
				return key, nil
			})
			if err != nil || token == nil || !token.Valid {
				return c.JSON(http.StatusForbidden, errorJSON("invalid or expired token"))
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusForbidden, errorJSON("invalid or expired token"))
			}

			// "id" is what the issuing service writes; "sub" is accepted as well
			rawID, found := claims["id"]
			if !found {
				rawID = claims["sub"]
			}
			userID, err := parseUserID(rawID)
			if err != nil || userID <= 0 {
				return c.JSON(http.StatusForbidden, errorJSON("invalid or expired token"))
			}

			roleClaim, _ := claims["role"].(string)
			role, ok := model.ParseRole(roleClaim)
			if !ok {
				return c.JSON(http.StatusForbidden, errorJSON("invalid or expired token"))
			}

			c.Set(CtxIdentityKey, model.Identity{UserID: userID, Role: role})
			return next(c)
		}
	}
}

// IdentityFrom returns the caller set by AuthJWT.
func IdentityFrom(c echo.Context) (model.Identity, bool) {
	id, ok := c.Get(CtxIdentityKey).(model.Identity)
	return id, ok
}

func tokenFromRequest(c echo.Context) string {
	if ck, err := c.Cookie(TokenCookieName); err == nil && strings.TrimSpace(ck.Value) != "" {
		return strings.TrimSpace(ck.Value)
	}

	authz := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Success: false, Message: msg}
}

func parseUserID(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, errors.New("invalid user id")
	}
}
