package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/storefront/catalog-api/internal/api/metrics"
	"github.com/storefront/catalog-api/internal/core/domain"
	"github.com/storefront/catalog-api/internal/core/ports"
)

const principalKey = "principal"

// Authenticate verifies the bearer token and stores the decoded session in the
// echo context as the request principal.
func Authenticate(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
				return err
			}
			return verify(c, auth, token, next)
		}
	}
}

// OptionalAuthenticate lets anonymous requests through but still rejects a
// bearer token that is present and invalid.
func OptionalAuthenticate(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}
			token, err := bearerToken(header)
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
				return err
			}
			return verify(c, auth, token, next)
		}
	}
}

func verify(c echo.Context, auth ports.AuthService, token string, next echo.HandlerFunc) error {
	session, err := auth.Authenticate(c.Request().Context(), token)
	if err != nil {
		metrics.TokenVerificationsTotal.WithLabelValues(verificationResult(err)).Inc()
		return err
	}
	metrics.TokenVerificationsTotal.WithLabelValues("ok").Inc()
	c.Set(principalKey, session)
	return next(c)
}

// Principal returns the session stored by Authenticate, if any.
func Principal(c echo.Context) (*domain.Session, bool) {
	s, ok := c.Get(principalKey).(*domain.Session)
	return s, ok && s != nil
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", domain.ErrTokenMissing
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", domain.ErrTokenMissing
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", domain.ErrTokenMissing
	}
	return token, nil
}

func verificationResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenMissing):
		return "missing"
	case errors.Is(err, domain.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, domain.ErrTokenInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenRevoked):
		return "revoked"
	default:
		return "error"
	}
}
