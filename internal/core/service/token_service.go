package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/storefront/catalog-api/internal/core/domain"
)

const (
	DefaultTokenTTL    = 8 * time.Hour
	DefaultTokenIssuer = "catalog-api"
)

// TokenConfig is fixed at process start.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// sessionClaims is the JWT payload of a session token.
// IssuedAtNano carries the sub-second issue time so that a token minted just
// after a revocation in the same second is still accepted.
type sessionClaims struct {
	Role         string   `json:"role"`
	Permissions  []string `json:"permissions"`
	IssuedAtNano int64    `json:"iat_ns,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens. Verification is a
// pure function of the token, the secret and the clock.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token service: signing secret is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTokenTTL
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultTokenIssuer
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &TokenService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    cfg.Now,
	}, nil
}

// Issue signs a token for user carrying a copy of role's permissions. A nil
// role (dangling reference) yields a token with no role and no permissions.
func (s *TokenService) Issue(user *domain.User, role *domain.Role) (string, *domain.Session, error) {
	if user == nil || user.ID == "" {
		return "", nil, errors.New("issue token: user identity is required")
	}

	issuedAt := s.now().UTC()
	session := &domain.Session{
		TokenID:     uuid.NewString(),
		Subject:     user.ID,
		Permissions: role.PermissionSnapshot(),
		IssuedAt:    issuedAt,
		ExpiresAt:   issuedAt.Truncate(time.Second).Add(s.ttl),
	}
	if role != nil {
		session.Role = role.Name
	}

	claims := sessionClaims{
		Role:         session.Role,
		Permissions:  session.Permissions,
		IssuedAtNano: issuedAt.UnixNano(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.TokenID,
			Subject:   session.Subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, session, nil
}

// Verify decodes token and reports one of the domain token errors on failure.
func (s *TokenService) Verify(token string) (*domain.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrTokenMissing
	}

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.issuer),
	)
	if err != nil {
		return nil, classifyTokenError(err)
	}
	if claims.Subject == "" || claims.IssuedAt == nil {
		return nil, domain.ErrTokenMalformed
	}

	issuedAt, ok := claims.issuedAt()
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	perms := claims.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &domain.Session{
		TokenID:     claims.ID,
		Subject:     claims.Subject,
		Role:        claims.Role,
		Permissions: perms,
		IssuedAt:    issuedAt,
		ExpiresAt:   claims.ExpiresAt.Time.UTC(),
	}, nil
}

// issuedAt prefers the nanosecond claim, which must fall inside the second
// named by iat.
func (c *sessionClaims) issuedAt() (time.Time, bool) {
	whole := c.IssuedAt.Time.UTC()
	if c.IssuedAtNano == 0 {
		return whole, true
	}
	precise := time.Unix(0, c.IssuedAtNano).UTC()
	if precise.Before(whole) || !precise.Before(whole.Add(time.Second)) {
		return time.Time{}, false
	}
	return precise, true
}

// TTL is the fixed validity window of issued tokens.
func (s *TokenService) TTL() time.Duration { return s.ttl }

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return domain.ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return domain.ErrTokenInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	default:
		return domain.ErrTokenMalformed
	}
}
