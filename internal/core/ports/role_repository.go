package ports

import (
	"context"

	"github.com/storefront/catalog-api/internal/core/domain"
)

// RoleRepository persists Role documents. Missing roles yield
// domain.ErrRoleNotFound; a duplicate name on write yields
// domain.ErrRoleNameTaken.
type RoleRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]*domain.Role, error)
	Create(ctx context.Context, role *domain.Role) (*domain.Role, error)
	Update(ctx context.Context, role *domain.Role) error
	Delete(ctx context.Context, id string) error
}
