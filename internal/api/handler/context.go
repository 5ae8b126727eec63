package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/storefront/catalog-api/internal/api/middleware"
	"github.com/storefront/catalog-api/internal/core/domain"
)

// principal returns the authenticated session, or nil on public routes.
func principal(c echo.Context) *domain.Session {
	s, _ := middleware.Principal(c)
	return s
}

// requirePrincipal fails with ErrTokenMissing when the route was reached
// without Authenticate having run.
func requirePrincipal(c echo.Context) (*domain.Session, error) {
	s, ok := middleware.Principal(c)
	if !ok {
		return nil, domain.ErrTokenMissing
	}
	return s, nil
}

// bind decodes and validates the request body.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Invalid("invalid payload")
	}
	return c.Validate(req)
}
