package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/storefront/catalog-api/internal/core/domain"
	"github.com/storefront/catalog-api/internal/core/ports"
)

// ReferenceEnforcer validates cross-entity references before a write is
// committed. It guarantees validity at the instant of the check only; readers
// must tolerate references that disappear later.
type ReferenceEnforcer struct {
	roles      ports.RoleRepository
	users      ports.UserRepository
	categories ports.CategoryRepository
}

func NewReferenceEnforcer(roles ports.RoleRepository, users ports.UserRepository, categories ports.CategoryRepository) *ReferenceEnforcer {
	return &ReferenceEnforcer{roles: roles, users: users, categories: categories}
}

// ResolveRole looks a role up by id, then by name.
func (e *ReferenceEnforcer) ResolveRole(ctx context.Context, ref string) (*domain.Role, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, &domain.ReferenceError{Entity: domain.RefRole, Key: ref}
	}

	role, err := e.roles.FindByID(ctx, ref)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, domain.ErrRoleNotFound) {
		return nil, fmt.Errorf("resolve role: %w", err)
	}

	role, err = e.roles.FindByName(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			return nil, &domain.ReferenceError{Entity: domain.RefRole, Key: ref}
		}
		return nil, fmt.Errorf("resolve role: %w", err)
	}
	return role, nil
}

// LookupRole returns the role with the given id, or nil when the reference
// no longer resolves.
func (e *ReferenceEnforcer) LookupRole(ctx context.Context, id string) (*domain.Role, error) {
	role, err := e.roles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup role: %w", err)
	}
	return role, nil
}

// CheckCategory fails with a category ReferenceError when id does not exist.
func (e *ReferenceEnforcer) CheckCategory(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return &domain.ReferenceError{Entity: domain.RefCategory, Key: id}
	}
	if _, err := e.categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return &domain.ReferenceError{Entity: domain.RefCategory, Key: id}
		}
		return fmt.Errorf("check category: %w", err)
	}
	return nil
}

// LookupCategory returns the category with the given id, or nil when the
// reference no longer resolves.
func (e *ReferenceEnforcer) LookupCategory(ctx context.Context, id string) (*domain.Category, error) {
	c, err := e.categories.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup category: %w", err)
	}
	return c, nil
}

// CheckRoleUnreferenced fails with ErrReferenceInUse while any user still
// references roleID.
func (e *ReferenceEnforcer) CheckRoleUnreferenced(ctx context.Context, roleID string) error {
	n, err := e.users.CountByRole(ctx, roleID)
	if err != nil {
		return fmt.Errorf("count role references: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: role is assigned to %d user(s)", domain.ErrReferenceInUse, n)
	}
	return nil
}
