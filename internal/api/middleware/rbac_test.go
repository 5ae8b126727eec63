package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/storefront/catalog-api/internal/core/domain"
)

func withPrincipal(s *domain.Session) echo.Context {
	c, _ := newContext("")
	if s != nil {
		c.Set(principalKey, s)
	}
	return c
}

func ok(c echo.Context) error { return c.NoContent(http.StatusOK) }

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name    string
		session *domain.Session
		perms   []string
		want    error
	}{
		{"holds permission", &domain.Session{Permissions: []string{domain.PermManageUsers}}, []string{domain.PermManageUsers}, nil},
		{"holds one of several", &domain.Session{Permissions: []string{domain.PermViewUsers}}, []string{domain.PermManageUsers, domain.PermViewUsers}, nil},
		{"admin name without permission", &domain.Session{Role: "admin", Permissions: []string{}}, []string{domain.PermManageUsers}, domain.ErrForbidden},
		{"empty snapshot", &domain.Session{}, []string{domain.PermManageRoles}, domain.ErrForbidden},
		{"no principal", nil, []string{domain.PermManageRoles}, domain.ErrTokenMissing},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := RequirePermission(tc.perms...)(ok)(withPrincipal(tc.session))
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	allow := RequireRole("admin", "editor")(ok)

	if err := allow(withPrincipal(&domain.Session{Role: "editor"})); err != nil {
		t.Fatalf("editor rejected: %v", err)
	}
	if err := allow(withPrincipal(&domain.Session{Role: "user"})); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := allow(withPrincipal(&domain.Session{})); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("role-less session must be denied, got %v", err)
	}
	if err := allow(withPrincipal(nil)); !errors.Is(err, domain.ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}
}

func TestRateLimit(t *testing.T) {
	e := echo.New()
	e.GET("/limited", ok, RateLimit(1, 1))
	e.GET("/open", ok, RateLimit(0, 0))

	serve := func(path string) int {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec.Code
	}

	if code := serve("/limited"); code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", code)
	}
	if code := serve("/limited"); code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", code)
	}
	for range 5 {
		if code := serve("/open"); code != http.StatusOK {
			t.Fatalf("disabled limiter: expected 200, got %d", code)
		}
	}
}
