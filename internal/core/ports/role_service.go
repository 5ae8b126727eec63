package ports

import (
	"context"

	"github.com/storefront/catalog-api/internal/core/domain"
)

type CreateRoleInput struct {
	Name        string
	Description string
	Permissions []string
	Caller      *domain.Session
}

// UpdateRoleInput is a partial update: nil fields are left untouched.
type UpdateRoleInput struct {
	Name        *string
	Description *string
	Permissions *[]string
	Caller      *domain.Session
}

type RoleService interface {
	CreateRole(ctx context.Context, in CreateRoleInput) (*domain.Role, error)
	UpdateRole(ctx context.Context, id string, in UpdateRoleInput) (*domain.Role, error)
	DeleteRole(ctx context.Context, id string, caller *domain.Session) error
	GetRole(ctx context.Context, id string) (*domain.Role, error)
	ListRoles(ctx context.Context) ([]*domain.Role, error)
	EnsureSystemRoles(ctx context.Context) error
}
