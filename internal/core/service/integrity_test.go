package service

import (
	"context"
	"errors"
	"testing"

	"github.com/storefront/catalog-api/internal/core/domain"
)

func TestReferenceEnforcer_ResolveRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	byID, err := f.refs.ResolveRole(ctx, f.adminRole.ID)
	if err != nil || byID.Name != DefaultAdminRoleName {
		t.Fatalf("resolve by id = %+v, %v", byID, err)
	}

	byName, err := f.refs.ResolveRole(ctx, DefaultAdminRoleName)
	if err != nil || byName.ID != f.adminRole.ID {
		t.Fatalf("resolve by name = %+v, %v", byName, err)
	}

	_, err = f.refs.ResolveRole(ctx, "ghost")
	if !errors.Is(err, domain.ErrInvalidRole) || !errors.Is(err, domain.ErrInvalidReference) {
		t.Fatalf("expected invalid role reference, got %v", err)
	}
	var re *domain.ReferenceError
	if !errors.As(err, &re) || re.Entity != domain.RefRole || re.Key != "ghost" {
		t.Fatalf("expected ReferenceError naming the role, got %#v", err)
	}
}

func TestReferenceEnforcer_CheckCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.refs.CheckCategory(ctx, "missing"); !errors.Is(err, domain.ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
	if err := f.refs.CheckCategory(ctx, ""); !errors.Is(err, domain.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference for empty key, got %v", err)
	}

	c, err := f.catalog.CreateCategory(ctx, categoryInput("Shoes"))
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if err := f.refs.CheckCategory(ctx, c.ID); err != nil {
		t.Fatalf("existing category rejected: %v", err)
	}
}

func TestReferenceEnforcer_LookupToleratesDangling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	role, err := f.refs.LookupRole(ctx, "gone")
	if err != nil || role != nil {
		t.Fatalf("LookupRole(dangling) = %+v, %v", role, err)
	}
	c, err := f.refs.LookupCategory(ctx, "gone")
	if err != nil || c != nil {
		t.Fatalf("LookupCategory(dangling) = %+v, %v", c, err)
	}
}

func TestReferenceEnforcer_CheckRoleUnreferenced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.refs.CheckRoleUnreferenced(ctx, f.adminRole.ID); err != nil {
		t.Fatalf("unreferenced role rejected: %v", err)
	}
	f.register(t, "alice", "a@x.com", "pw", DefaultAdminRoleName)
	if err := f.refs.CheckRoleUnreferenced(ctx, f.adminRole.ID); !errors.Is(err, domain.ErrReferenceInUse) {
		t.Fatalf("expected ErrReferenceInUse, got %v", err)
	}
}
