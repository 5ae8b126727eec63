package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/storefront/catalog-api/internal/core/domain"
)

func TestUserRepository_Uniqueness(t *testing.T) {
	users := NewStore().Users()
	ctx := context.Background()

	alice, err := users.Create(ctx, &domain.User{Username: "alice", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if alice.ID == "" {
		t.Fatal("expected an id")
	}

	if _, err := users.Create(ctx, &domain.User{Username: "alice", Email: "other@x.com"}); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if _, err := users.Create(ctx, &domain.User{Username: "bob", Email: "a@x.com"}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	bob, _ := users.Create(ctx, &domain.User{Username: "bob", Email: "b@x.com"})
	bob.Email = "a@x.com"
	if err := users.Update(ctx, bob); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken on update, got %v", err)
	}
}

func TestUserRepository_FindByLogin(t *testing.T) {
	users := NewStore().Users()
	ctx := context.Background()
	users.Create(ctx, &domain.User{Username: "alice", Email: "a@x.com"})
	users.Create(ctx, &domain.User{Username: "bob", Email: "b@x.com"})

	tests := []struct {
		username, email string
		want            int
	}{
		{"alice", "", 1},
		{"", "b@x.com", 1},
		{"alice", "a@x.com", 1},
		{"alice", "b@x.com", 2},
		{"nobody", "", 0},
		{"", "", 0},
	}
	for _, tc := range tests {
		got, err := users.FindByLogin(ctx, tc.username, tc.email)
		if err != nil {
			t.Fatalf("FindByLogin(%q, %q): %v", tc.username, tc.email, err)
		}
		if len(got) != tc.want {
			t.Fatalf("FindByLogin(%q, %q) = %d users, want %d", tc.username, tc.email, len(got), tc.want)
		}
	}
}

func TestUserRepository_RoleReferences(t *testing.T) {
	users := NewStore().Users()
	ctx := context.Background()
	users.Create(ctx, &domain.User{Username: "alice", Email: "a@x.com", RoleID: "r1"})
	users.Create(ctx, &domain.User{Username: "bob", Email: "b@x.com", RoleID: "r1"})
	users.Create(ctx, &domain.User{Username: "carol", Email: "c@x.com", RoleID: "r2"})

	if n, _ := users.CountByRole(ctx, "r1"); n != 2 {
		t.Fatalf("CountByRole = %d, want 2", n)
	}
	ids, _ := users.ListIDsByRole(ctx, "r2")
	if len(ids) != 1 {
		t.Fatalf("ListIDsByRole = %v", ids)
	}
}

func TestRoleRepository_ReturnsCopies(t *testing.T) {
	roles := NewStore().Roles()
	ctx := context.Background()

	created, err := roles.Create(ctx, &domain.Role{Name: "editor", Permissions: []string{domain.PermManageProducts}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	created.Permissions[0] = domain.PermManageUsers

	stored, _ := roles.FindByID(ctx, created.ID)
	if stored.Permissions[0] != domain.PermManageProducts {
		t.Fatalf("caller mutation leaked into the store: %v", stored.Permissions)
	}

	if _, err := roles.Create(ctx, &domain.Role{Name: "editor"}); !errors.Is(err, domain.ErrRoleNameTaken) {
		t.Fatalf("expected ErrRoleNameTaken, got %v", err)
	}
	if err := roles.Delete(ctx, "missing"); !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

func TestProductRepository_ListNewestFirst(t *testing.T) {
	products := NewStore().Products()
	ctx := context.Background()
	first, _ := products.Create(ctx, &domain.Product{Name: "first"})
	second, _ := products.Create(ctx, &domain.Product{Name: "second"})

	list, err := products.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("unexpected order: %+v", list)
	}
}
