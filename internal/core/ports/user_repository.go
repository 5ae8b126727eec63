package ports

import (
	"context"

	"github.com/storefront/catalog-api/internal/core/domain"
)

// UserRepository persists User documents. Lookups that find nothing return
// domain.ErrUserNotFound.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByLogin returns every user whose username or email matches one of
	// the non-empty arguments (at most two).
	FindByLogin(ctx context.Context, username, email string) ([]*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// ListIDsByRole returns the ids of users referencing roleID.
	ListIDsByRole(ctx context.Context, roleID string) ([]string, error)
	CountByRole(ctx context.Context, roleID string) (int64, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
}
