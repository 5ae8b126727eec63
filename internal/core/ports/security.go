package ports

import (
	"context"
	"time"

	"github.com/storefront/catalog-api/internal/core/domain"
)

// PasswordHasher produces and checks one-way salted password records.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches record. A mismatch is
	// (false, nil); a malformed record is an error.
	Verify(plaintext, record string) (bool, error)
}

// TokenIssuer issues and verifies stateless session tokens.
type TokenIssuer interface {
	Issue(user *domain.User, role *domain.Role) (string, *domain.Session, error)
	Verify(token string) (*domain.Session, error)
}

// RevocationList is a subject deny-list. Tokens issued at or before the
// recorded time for a subject are rejected.
type RevocationList interface {
	Revoke(ctx context.Context, subjects []string, at time.Time) error
	RevokedAt(ctx context.Context, subject string) (time.Time, bool, error)
}

// AuditRecorder accepts audit events without blocking the caller.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}

// AuditRepository persists audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}
