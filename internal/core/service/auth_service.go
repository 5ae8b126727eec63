package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/storefront/catalog-api/internal/core/domain"
	"github.com/storefront/catalog-api/internal/core/ports"
)

// AuthService implements login and per-request authentication.
type AuthService struct {
	users       ports.UserRepository
	refs        *ReferenceEnforcer
	hasher      ports.PasswordHasher
	tokens      ports.TokenIssuer
	revocations ports.RevocationList
	audit       ports.AuditRecorder
	log         zerolog.Logger

	decoyOnce sync.Once
	decoy     string
}

// AuthDeps groups the collaborators of AuthService. Revocations may be nil.
type AuthDeps struct {
	Users       ports.UserRepository
	Refs        *ReferenceEnforcer
	Hasher      ports.PasswordHasher
	Tokens      ports.TokenIssuer
	Revocations ports.RevocationList
	Audit       ports.AuditRecorder
}

func NewAuthService(deps AuthDeps, log zerolog.Logger) *AuthService {
	if deps.Audit == nil {
		deps.Audit = DiscardAudit{}
	}
	return &AuthService{
		users:       deps.Users,
		refs:        deps.Refs,
		hasher:      deps.Hasher,
		tokens:      deps.Tokens,
		revocations: deps.Revocations,
		audit:       deps.Audit,
		log:         log,
	}
}

// Login resolves exactly one user by username or email, verifies the
// password and issues a session token. Unknown users and wrong passwords
// produce the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, email, password string) (*ports.LoginResult, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" && email == "" {
		return nil, domain.Invalid("username or email is required")
	}

	matches, err := s.users.FindByLogin(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if len(matches) != 1 {
		// Spend the same hashing work as a real comparison.
		_, _ = s.hasher.Verify(password, s.decoyHash())
		s.audit.Record(auditEvent(domain.AuditLoginFailed, firstNonEmpty(username, email), nil, map[string]string{"reason": "no_match"}))
		return nil, domain.ErrInvalidCredentials
	}
	user := matches[0]

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("stored password hash is unreadable")
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		s.audit.Record(auditEvent(domain.AuditLoginFailed, user.ID, nil, map[string]string{"reason": "password_mismatch"}))
		return nil, domain.ErrInvalidCredentials
	}

	role, err := s.refs.LookupRole(ctx, user.RoleID)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if role == nil {
		s.log.Warn().Str("user_id", user.ID).Str("role_id", user.RoleID).Msg("user role no longer exists, issuing token without permissions")
	}

	token, session, err := s.tokens.Issue(user, role)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.audit.Record(auditEvent(domain.AuditLoginSucceeded, user.ID, nil, map[string]string{"role": session.Role}))
	return &ports.LoginResult{
		Token:   token,
		Session: session,
		User:    domain.Summarize(user, role),
	}, nil
}

// Authenticate verifies token and, when a deny-list is configured, rejects
// tokens issued at or before the subject's revocation time.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	session, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	if s.revocations == nil {
		return session, nil
	}

	revokedAt, found, err := s.revocations.RevokedAt(ctx, session.Subject)
	if err != nil {
		return nil, fmt.Errorf("authenticate: revocation lookup: %w", err)
	}
	if found && !session.IssuedAt.After(revokedAt) {
		return nil, domain.ErrTokenRevoked
	}
	return session, nil
}

func (s *AuthService) decoyHash() string {
	s.decoyOnce.Do(func() {
		h, err := s.hasher.Hash("decoy-password-for-timing")
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to prepare decoy hash")
			return
		}
		s.decoy = h
	})
	return s.decoy
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
