package middleware

import (
	"net/http"
	"strings"

	"kalamitraah/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// RequireRole admits only callers whose role is in roles. Must run after AuthJWT.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]struct{}, len(roles))
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
		names = append(names, string(r))
	}
	denied := "access denied, " + strings.Join(names, " or ") + " only"

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if _, ok := allowed[id.Role]; !ok {
				return c.JSON(http.StatusForbidden, errorJSON(denied))
			}
			return next(c)
		}
	}
}
