package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/storefront/catalog-api/internal/api/metrics"
	"github.com/storefront/catalog-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

type errorRule struct {
	target error
	status int
	code   string
	// detailed renders the full error text instead of the sentinel's.
	detailed bool
}

// errorRules is evaluated in order; the first match wins. Entity-specific
// reference errors come before the generic one.
var errorRules = []errorRule{
	{target: domain.ErrInvalidRole, status: http.StatusBadRequest, code: "InvalidRole"},
	{target: domain.ErrInvalidReference, status: http.StatusBadRequest, code: "InvalidReference"},
	{target: domain.ErrValidation, status: http.StatusBadRequest, code: "ValidationFailed"},
	{target: domain.ErrUsernameTaken, status: http.StatusBadRequest, code: "UsernameTaken"},
	{target: domain.ErrEmailTaken, status: http.StatusBadRequest, code: "EmailTaken"},
	{target: domain.ErrPasswordRequired, status: http.StatusBadRequest, code: "PasswordRequired"},
	{target: domain.ErrUnknownPermission, status: http.StatusBadRequest, code: "UnknownPermission"},
	{target: domain.ErrInvalidCredentials, status: http.StatusBadRequest, code: "InvalidCredentials"},

	{target: domain.ErrTokenMissing, status: http.StatusUnauthorized, code: "MissingToken"},
	{target: domain.ErrTokenMalformed, status: http.StatusUnauthorized, code: "MalformedToken"},
	{target: domain.ErrTokenInvalidSignature, status: http.StatusUnauthorized, code: "InvalidSignature"},
	{target: domain.ErrTokenExpired, status: http.StatusUnauthorized, code: "Expired"},
	{target: domain.ErrTokenRevoked, status: http.StatusUnauthorized, code: "TokenRevoked"},

	{target: domain.ErrForbidden, status: http.StatusForbidden, code: "Forbidden", detailed: true},

	{target: domain.ErrUserNotFound, status: http.StatusNotFound, code: "NotFound"},
	{target: domain.ErrRoleNotFound, status: http.StatusNotFound, code: "NotFound"},
	{target: domain.ErrCategoryNotFound, status: http.StatusNotFound, code: "NotFound"},
	{target: domain.ErrProductNotFound, status: http.StatusNotFound, code: "NotFound"},

	{target: domain.ErrReferenceInUse, status: http.StatusConflict, code: "ReferenceInUse", detailed: true},
	{target: domain.ErrRoleNameTaken, status: http.StatusConflict, code: "RoleNameTaken"},
	{target: domain.ErrRoleProtected, status: http.StatusConflict, code: "RoleProtected"},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"code": "<Kind>", "error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, rate limiter, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Code: httpCode(he.Code), Error: fmt.Sprintf("%v", he.Message)}
	}

	for _, rule := range errorRules {
		if !errors.Is(err, rule.target) {
			continue
		}
		countIntegrity(err)
		return rule.status, errorResponse{Code: rule.code, Error: clientMessage(err, rule)}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Code: "Internal", Error: "internal server error"}
}

// clientMessage picks the text shown to the client. Typed errors carry
// client-safe detail; everything else falls back to the sentinel text so
// internal wrapping never leaks.
func clientMessage(err error, rule errorRule) string {
	var (
		ve *domain.ValidationError
		re *domain.ReferenceError
		pe *domain.PermissionError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Msg
	case errors.As(err, &re):
		return re.Error()
	case errors.As(err, &pe):
		return pe.Error()
	case rule.detailed:
		return err.Error()
	}
	return rule.target.Error()
}

func countIntegrity(err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRole) && errors.Is(err, domain.ErrInvalidReference):
		metrics.IntegrityRejectionsTotal.WithLabelValues("invalid_role").Inc()
	case errors.Is(err, domain.ErrInvalidCategory):
		metrics.IntegrityRejectionsTotal.WithLabelValues("invalid_category").Inc()
	case errors.Is(err, domain.ErrReferenceInUse):
		metrics.IntegrityRejectionsTotal.WithLabelValues("reference_in_use").Inc()
	}
}

func httpCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BadRequest"
	case http.StatusUnauthorized:
		return "Unauthorized"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusNotFound:
		return "NotFound"
	case http.StatusMethodNotAllowed:
		return "MethodNotAllowed"
	case http.StatusRequestEntityTooLarge:
		return "PayloadTooLarge"
	case http.StatusTooManyRequests:
		return "RateLimited"
	}
	if status >= http.StatusInternalServerError {
		return "Internal"
	}
	return http.StatusText(status)
}
