package middleware

import (
	"fmt"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/storefront/catalog-api/internal/api/metrics"
	"github.com/storefront/catalog-api/internal/core/domain"
)

// RequirePermission admits the request when the principal's permission
// snapshot holds any of perms. It must run after Authenticate.
func RequirePermission(perms ...string) echo.MiddlewareFunc {
	requirement := strings.Join(perms, "|")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, ok := Principal(c)
			if !ok {
				return domain.ErrTokenMissing
			}
			if !slices.ContainsFunc(perms, session.HasPermission) {
				metrics.AuthorizationDecisionsTotal.WithLabelValues(requirement, "deny").Inc()
				return fmt.Errorf("%w: requires %s", domain.ErrForbidden, requirement)
			}
			metrics.AuthorizationDecisionsTotal.WithLabelValues(requirement, "allow").Inc()
			return next(c)
		}
	}
}

// RequireRole is the coarse-grained check on the role name carried by the
// token.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	requirement := "role:" + strings.Join(roles, "|")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, ok := Principal(c)
			if !ok {
				return domain.ErrTokenMissing
			}
			if session.Role == "" || !slices.Contains(roles, session.Role) {
				metrics.AuthorizationDecisionsTotal.WithLabelValues(requirement, "deny").Inc()
				return fmt.Errorf("%w: requires %s", domain.ErrForbidden, requirement)
			}
			metrics.AuthorizationDecisionsTotal.WithLabelValues(requirement, "allow").Inc()
			return next(c)
		}
	}
}
