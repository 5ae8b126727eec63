package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/storefront/catalog-api/internal/core/domain"
	"github.com/storefront/catalog-api/internal/core/ports"
	"github.com/storefront/catalog-api/internal/core/service"
	"github.com/storefront/catalog-api/internal/infrastructure/db/memory"
)

type testServer struct {
	e        *echo.Echo
	identity *service.IdentityService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewStore()
	log := zerolog.Nop()
	refs := service.NewReferenceEnforcer(store.Roles(), store.Users(), store.Categories())
	hasher := service.NewBcryptHasher(bcrypt.MinCost)
	tokens, err := service.NewTokenService(service.TokenConfig{Secret: "router-test"})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	identity := service.NewIdentityService(service.IdentityDeps{Users: store.Users(), Refs: refs, Hasher: hasher}, log)
	auth := service.NewAuthService(service.AuthDeps{Users: store.Users(), Refs: refs, Hasher: hasher, Tokens: tokens}, log)
	roles := service.NewRoleService(service.RoleDeps{Roles: store.Roles(), Users: store.Users(), Refs: refs}, log)
	catalog := service.NewCatalogService(store.Categories(), store.Products(), refs, log)

	if err := roles.EnsureSystemRoles(context.Background()); err != nil {
		t.Fatalf("EnsureSystemRoles: %v", err)
	}

	e := NewRouter(Dependencies{
		Log:      log,
		Identity: identity,
		Auth:     auth,
		Roles:    roles,
		Catalog:  catalog,
		Metrics:  prometheus.NewRegistry(),
	})
	return &testServer{e: e, identity: identity}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/user/login", "", `{"username":"`+username+`","password":"`+password+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", username, rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid login json: %v", err)
	}
	return resp.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestRouter_RegisterLoginDelete(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/user/register", "", `{"username":"bob","email":"b@x.com","password":"pw123"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	bob := decode[domain.UserSummary](t, rec)
	if bob.Role != service.DefaultRoleName {
		t.Fatalf("expected default role, got %q", bob.Role)
	}

	bobToken := s.login(t, "bob", "pw123")

	me := decode[struct {
		User        domain.UserSummary `json:"user"`
		Permissions []string           `json:"permissions"`
	}](t, s.do(t, http.MethodGet, "/api/user/me", bobToken, ""))
	if me.User.ID != bob.ID || len(me.Permissions) != 0 {
		t.Fatalf("unexpected /me: %+v", me)
	}

	rec = s.do(t, http.MethodPost, "/api/user/login", "", `{"username":"bob","password":"wrong"}`)
	if rec.Code != http.StatusBadRequest || decode[errorResponse](t, rec).Code != "InvalidCredentials" {
		t.Fatalf("wrong password: got %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodDelete, "/api/user/"+bob.ID, bobToken, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("delete without manage-users: expected 403, got %d", rec.Code)
	}

	if _, err := s.identity.CreateUser(context.Background(), ports.RegisterInput{
		Username: "root", Email: "root@x.com", Password: "rootpw", Role: service.DefaultAdminRoleName,
	}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	adminToken := s.login(t, "root", "rootpw")

	rec = s.do(t, http.MethodDelete, "/api/user/"+bob.ID, adminToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin delete: expected 200, got %d %s", rec.Code, rec.Body.String())
	}

	users := decode[[]domain.UserSummary](t, s.do(t, http.MethodGet, "/api/user", adminToken, ""))
	for _, u := range users {
		if u.ID == bob.ID {
			t.Fatalf("deleted user still listed")
		}
	}
}

func TestRouter_ErrorEnvelope(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/user/register", "", `{"username":"alice","email":"a@x.com","password":"pw"}`)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		status int
		code   string
	}{
		{"duplicate username", http.MethodPost, "/api/user/register", "", `{"username":"alice","email":"z@x.com","password":"pw"}`, http.StatusBadRequest, "UsernameTaken"},
		{"duplicate username without email", http.MethodPost, "/api/user/register", "", `{"username":"alice","password":"pw"}`, http.StatusBadRequest, "UsernameTaken"},
		{"duplicate username with bad email", http.MethodPost, "/api/user/register", "", `{"username":"alice","email":"nope","password":"pw"}`, http.StatusBadRequest, "UsernameTaken"},
		{"malformed email", http.MethodPost, "/api/user/register", "", `{"username":"zed","email":"nope","password":"pw"}`, http.StatusBadRequest, "ValidationFailed"},
		{"duplicate email", http.MethodPost, "/api/user/register", "", `{"username":"zed","email":"a@x.com","password":"pw"}`, http.StatusBadRequest, "EmailTaken"},
		{"missing password", http.MethodPost, "/api/user/register", "", `{"username":"zed","email":"z@x.com"}`, http.StatusBadRequest, "PasswordRequired"},
		{"unknown role", http.MethodPost, "/api/user/register", "", `{"username":"zed","email":"z@x.com","password":"pw","role":"ghost"}`, http.StatusBadRequest, "InvalidRole"},
		{"anonymous admin registration", http.MethodPost, "/api/user/register", "", `{"username":"zed","email":"z@x.com","password":"pw","role":"admin"}`, http.StatusForbidden, "Forbidden"},
		{"missing token", http.MethodGet, "/api/user/me", "", "", http.StatusUnauthorized, "MissingToken"},
		{"malformed token", http.MethodGet, "/api/user/me", "not-a-token", "", http.StatusUnauthorized, "MalformedToken"},
		{"roles need a token", http.MethodGet, "/api/role", "", "", http.StatusUnauthorized, "MissingToken"},
		{"unknown product", http.MethodGet, "/api/product/missing", "", "", http.StatusNotFound, "NotFound"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, tc.method, tc.path, tc.token, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d %s", tc.status, rec.Code, rec.Body.String())
			}
			if got := decode[errorResponse](t, rec); got.Code != tc.code || got.Error == "" {
				t.Fatalf("unexpected envelope: %+v", got)
			}
		})
	}
}

func TestRouter_PermissionsAdminOnly(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	if _, err := s.identity.CreateUser(ctx, ports.RegisterInput{
		Username: "root", Email: "root@x.com", Password: "rootpw", Role: service.DefaultAdminRoleName,
	}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	s.do(t, http.MethodPost, "/api/user/register", "", `{"username":"bob","email":"b@x.com","password":"pw123"}`)

	rec := s.do(t, http.MethodGet, "/api/permission", s.login(t, "root", "rootpw"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin: expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if got := decode[[]string](t, rec); len(got) != len(domain.PermissionCatalog) {
		t.Fatalf("unexpected permissions %v", got)
	}

	rec = s.do(t, http.MethodGet, "/api/permission", s.login(t, "bob", "pw123"), "")
	if rec.Code != http.StatusForbidden || decode[errorResponse](t, rec).Code != "Forbidden" {
		t.Fatalf("user: expected 403, got %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/api/permission", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", rec.Code)
	}
}

func TestRouter_CatalogIntegrity(t *testing.T) {
	s := newTestServer(t)
	if _, err := s.identity.CreateUser(context.Background(), ports.RegisterInput{
		Username: "root", Email: "root@x.com", Password: "rootpw", Role: service.DefaultAdminRoleName,
	}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	token := s.login(t, "root", "rootpw")

	rec := s.do(t, http.MethodPost, "/api/product", token, `{"name":"Runner","brand":"Acme","category":"nope","price":10,"stock":1,"description":"d"}`)
	if rec.Code != http.StatusBadRequest || decode[errorResponse](t, rec).Code != "InvalidReference" {
		t.Fatalf("missing category: got %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, "/api/category", token, `{"name":"Shoes"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: %d %s", rec.Code, rec.Body.String())
	}
	category := decode[domain.Category](t, rec)

	rec = s.do(t, http.MethodPost, "/api/product", token, `{"name":"Runner","brand":"Acme","category":"`+category.ID+`","price":10,"stock":1,"description":"d"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: %d %s", rec.Code, rec.Body.String())
	}
	product := decode[ports.ProductView](t, rec)
	if product.CategoryName != "Shoes" {
		t.Fatalf("unexpected product: %+v", product)
	}

	products := decode[[]ports.ProductView](t, s.do(t, http.MethodGet, "/api/product", "", ""))
	if len(products) != 1 {
		t.Fatalf("expected 1 product in public listing, got %d", len(products))
	}

	rec = s.do(t, http.MethodPost, "/api/role", token, `{"name":"editor","permissions":["launch-rockets"]}`)
	if rec.Code != http.StatusBadRequest || decode[errorResponse](t, rec).Code != "UnknownPermission" {
		t.Fatalf("unknown permission: got %d %s", rec.Code, rec.Body.String())
	}

	roles := decode[[]domain.Role](t, s.do(t, http.MethodGet, "/api/role", token, ""))
	for _, r := range roles {
		if r.Name == service.DefaultAdminRoleName {
			rec = s.do(t, http.MethodDelete, "/api/role/"+r.ID, token, "")
			if rec.Code != http.StatusConflict {
				t.Fatalf("deleting admin role: expected 409, got %d", rec.Code)
			}
		}
	}
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/health", "/health/ready", "/metrics"} {
		if rec := s.do(t, http.MethodGet, path, "", ""); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}
