package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusdesk/school-portal/internal/core/domain"
)

// RequireRole rejects requests whose guard-accepted claims do not carry one of
// the given roles. It backs the guard on route groups that call role-specific
// backend endpoints.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFrom(c)
			if claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
			}
			role, err := claims.ParsedRole()
			if err != nil {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			if _, ok := allowed[role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
