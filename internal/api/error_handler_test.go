package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/storefront/catalog-api/internal/core/domain"
)

func renderError(t *testing.T, err error) (int, errorResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	NewHTTPErrorHandler(zerolog.Nop())(err, e.NewContext(req, rec))

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return rec.Code, body
}

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"role reference", &domain.ReferenceError{Entity: domain.RefRole, Key: "ghost"}, http.StatusBadRequest, "InvalidRole", `invalid reference: role "ghost" does not exist`},
		{"category reference", fmt.Errorf("create: %w", &domain.ReferenceError{Entity: domain.RefCategory, Key: "c1"}), http.StatusBadRequest, "InvalidReference", `invalid reference: category "c1" does not exist`},
		{"validation detail", domain.Invalid("price must not be negative"), http.StatusBadRequest, "ValidationFailed", "price must not be negative"},
		{"wrapped sentinel hides context", fmt.Errorf("repo layer detail: %w", domain.ErrUsernameTaken), http.StatusBadRequest, "UsernameTaken", "username already in use"},
		{"unknown permission", &domain.PermissionError{Permission: "fly"}, http.StatusBadRequest, "UnknownPermission", "unknown permission: fly"},
		{"expired", domain.ErrTokenExpired, http.StatusUnauthorized, "Expired", "token expired"},
		{"revoked", domain.ErrTokenRevoked, http.StatusUnauthorized, "TokenRevoked", "token revoked"},
		{"forbidden detail", fmt.Errorf("%w: requires manage-users", domain.ErrForbidden), http.StatusForbidden, "Forbidden", "access forbidden: requires manage-users"},
		{"not found", domain.ErrRoleNotFound, http.StatusNotFound, "NotFound", "role not found"},
		{"in use", fmt.Errorf("%w: role is assigned to 2 user(s)", domain.ErrReferenceInUse), http.StatusConflict, "ReferenceInUse", "reference in use: role is assigned to 2 user(s)"},
		{"protected", domain.ErrRoleProtected, http.StatusConflict, "RoleProtected", "system role cannot be renamed or deleted"},
		{"echo error", echo.NewHTTPError(http.StatusTooManyRequests, "too many requests"), http.StatusTooManyRequests, "RateLimited", "too many requests"},
		{"unexpected", errors.New("mongo: connection reset"), http.StatusInternalServerError, "Internal", "internal server error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := renderError(t, tc.err)
			if status != tc.status || body.Code != tc.code || body.Error != tc.msg {
				t.Fatalf("got %d %+v, want %d %s %q", status, body, tc.status, tc.code, tc.msg)
			}
		})
	}
}
