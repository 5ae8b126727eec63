package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/storefront/catalog-api/internal/core/domain"
	"github.com/storefront/catalog-api/internal/core/ports"
)

type stubIdentityService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.UserSummary, error)
	getFn      func(ctx context.Context, id string) (*domain.UserSummary, error)
}

func (s *stubIdentityService) Register(ctx context.Context, in ports.RegisterInput) (*domain.UserSummary, error) {
	return s.registerFn(ctx, in)
}

func (s *stubIdentityService) CreateUser(ctx context.Context, in ports.RegisterInput) (*domain.UserSummary, error) {
	return s.registerFn(ctx, in)
}

func (s *stubIdentityService) UpdateUser(context.Context, string, ports.UpdateUserInput) (*domain.UserSummary, error) {
	return nil, errors.New("not implemented")
}

func (s *stubIdentityService) DeleteUser(context.Context, string, *domain.Session) error {
	return errors.New("not implemented")
}

func (s *stubIdentityService) GetUser(ctx context.Context, id string) (*domain.UserSummary, error) {
	return s.getFn(ctx, id)
}

func (s *stubIdentityService) ListUsers(context.Context) ([]domain.UserSummary, error) {
	return nil, errors.New("not implemented")
}

type stubAuthService struct {
	loginFn func(ctx context.Context, username, email, password string) (*ports.LoginResult, error)
}

func (s *stubAuthService) Login(ctx context.Context, username, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, username, email, password)
}

func (s *stubAuthService) Authenticate(context.Context, string) (*domain.Session, error) {
	return nil, domain.ErrTokenMalformed
}

func jsonContext(method, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubIdentityService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.UserSummary, error) {
			if in.Username != "bob" || in.Email != "b@x.com" || in.Password != "pw123" || in.Role != "" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.Caller != nil {
				t.Fatalf("anonymous request must not carry a caller")
			}
			return &domain.UserSummary{ID: "u1", Username: in.Username, Email: in.Email, Role: "user"}, nil
		},
	}
	h := NewAuthHandler(stub, &stubAuthService{})

	c, rec := jsonContext(http.MethodPost, `{"username":"bob","email":"b@x.com","password":"pw123"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var user domain.UserSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if user.Username != "bob" || user.Role != "user" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
}

func TestAuthHandler_Register_ServiceError(t *testing.T) {
	stub := &stubIdentityService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.UserSummary, error) {
			return nil, domain.ErrUsernameTaken
		},
	}
	h := NewAuthHandler(stub, &stubAuthService{})

	c, _ := jsonContext(http.MethodPost, `{"username":"bob","email":"b@x.com","password":"pw123"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	h := NewAuthHandler(&stubIdentityService{}, &stubAuthService{})

	c, _ := jsonContext(http.MethodPost, `{"username":`)
	if err := h.Register(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAuthHandler_Register_LeavesEmailChecksToService(t *testing.T) {
	var got ports.RegisterInput
	stub := &stubIdentityService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.UserSummary, error) {
			got = in
			return nil, domain.ErrUsernameTaken
		},
	}
	h := NewAuthHandler(stub, &stubAuthService{})

	c, _ := jsonContext(http.MethodPost, `{"username":"alice","email":"not-an-email","password":"x"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if got.Email != "not-an-email" {
		t.Fatalf("service saw %+v", got)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, email, password string) (*ports.LoginResult, error) {
			if email != "b@x.com" || password != "pw123" {
				return nil, domain.ErrInvalidCredentials
			}
			return &ports.LoginResult{
				Token:   "signed.token.value",
				Session: &domain.Session{Subject: "u1", ExpiresAt: expires},
				User:    domain.UserSummary{ID: "u1", Username: "bob"},
			}, nil
		},
	}
	h := NewAuthHandler(&stubIdentityService{}, stub)

	c, rec := jsonContext(http.MethodPost, `{"email":"b@x.com","password":"pw123"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "signed.token.value" || !resp.ExpiresAt.Equal(expires) || resp.User.ID != "u1" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	c, _ = jsonContext(http.MethodPost, `{"email":"b@x.com","password":"wrong"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Me_RequiresPrincipal(t *testing.T) {
	h := NewAuthHandler(&stubIdentityService{}, &stubAuthService{})

	c, _ := jsonContext(http.MethodGet, "")
	if err := h.Me(c); !errors.Is(err, domain.ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}
}
