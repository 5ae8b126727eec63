package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/storefront/catalog-api/internal/core/domain"
	"github.com/storefront/catalog-api/internal/core/ports"
	"github.com/storefront/catalog-api/internal/infrastructure/db/memory"
)

const testSecret = "test-secret"

type stubRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newStubRevocations() *stubRevocations {
	return &stubRevocations{revoked: make(map[string]time.Time)}
}

func (r *stubRevocations) Revoke(_ context.Context, subjects []string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range subjects {
		r.revoked[s] = at
	}
	return nil
}

func (r *stubRevocations) RevokedAt(_ context.Context, subject string) (time.Time, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	at, ok := r.revoked[subject]
	return at, ok, nil
}

func (r *stubRevocations) has(subject string) bool {
	_, ok, _ := r.RevokedAt(context.Background(), subject)
	return ok
}

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *recordingAudit) Record(e domain.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAudit) types() []domain.AuditEventType {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuditEventType, len(a.events))
	for i, e := range a.events {
		out[i] = e.Type
	}
	return out
}

// fixture wires every service over one in-memory store with the system
// roles already seeded.
type fixture struct {
	store       *memory.Store
	refs        *ReferenceEnforcer
	hasher      *BcryptHasher
	tokens      *TokenService
	revocations *stubRevocations
	audit       *recordingAudit

	identity *IdentityService
	auth     *AuthService
	roles    *RoleService
	catalog  *CatalogService

	defaultRole *domain.Role
	adminRole   *domain.Role
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	f := &fixture{
		store:       store,
		refs:        NewReferenceEnforcer(store.Roles(), store.Users(), store.Categories()),
		hasher:      NewBcryptHasher(bcrypt.MinCost),
		revocations: newStubRevocations(),
		audit:       &recordingAudit{},
	}

	tokens, err := NewTokenService(TokenConfig{Secret: testSecret})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	f.tokens = tokens

	log := zerolog.Nop()
	f.identity = NewIdentityService(IdentityDeps{
		Users:       store.Users(),
		Refs:        f.refs,
		Hasher:      f.hasher,
		Revocations: f.revocations,
		Audit:       f.audit,
	}, log)
	f.auth = NewAuthService(AuthDeps{
		Users:       store.Users(),
		Refs:        f.refs,
		Hasher:      f.hasher,
		Tokens:      f.tokens,
		Revocations: f.revocations,
		Audit:       f.audit,
	}, log)
	f.roles = NewRoleService(RoleDeps{
		Roles:       store.Roles(),
		Users:       store.Users(),
		Refs:        f.refs,
		Revocations: f.revocations,
		Audit:       f.audit,
	}, log)
	f.catalog = NewCatalogService(store.Categories(), store.Products(), f.refs, log)

	ctx := context.Background()
	if err := f.roles.EnsureSystemRoles(ctx); err != nil {
		t.Fatalf("EnsureSystemRoles: %v", err)
	}
	if f.defaultRole, err = store.Roles().FindByName(ctx, DefaultRoleName); err != nil {
		t.Fatalf("default role missing: %v", err)
	}
	if f.adminRole, err = store.Roles().FindByName(ctx, DefaultAdminRoleName); err != nil {
		t.Fatalf("admin role missing: %v", err)
	}
	return f
}

func (f *fixture) register(t *testing.T, username, email, password, role string) *domain.UserSummary {
	t.Helper()
	u, err := f.identity.CreateUser(context.Background(), registerInput(username, email, password, role))
	if err != nil {
		t.Fatalf("create %s: %v", username, err)
	}
	return u
}

func registerInput(username, email, password, role string) ports.RegisterInput {
	return ports.RegisterInput{Username: username, Email: email, Password: password, Role: role}
}

func managerSession() *domain.Session {
	return &domain.Session{Subject: "admin-1", Role: DefaultAdminRoleName, Permissions: []string{domain.PermManageUsers}}
}

func ptr[T any](v T) *T { return &v }

func categoryInput(name string) ports.CategoryInput {
	return ports.CategoryInput{Name: ptr(name)}
}

func productInput(name, categoryID string, price float64) ports.ProductInput {
	return ports.ProductInput{
		Name:        ptr(name),
		Brand:       ptr("Acme"),
		CategoryID:  ptr(categoryID),
		Price:       ptr(price),
		Stock:       ptr(3),
		Description: ptr("a product"),
	}
}
