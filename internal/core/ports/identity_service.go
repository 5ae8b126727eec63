package ports

import (
	"context"

	"github.com/storefront/catalog-api/internal/core/domain"
)

// RegisterInput carries a self-service or administrative account creation.
// Role is a role id or name; empty selects the configured default role.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
	// Caller is the authenticated principal, if any.
	Caller *domain.Session
}

// UpdateUserInput is a partial update: nil fields are left untouched.
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
	Role     *string
	Caller   *domain.Session
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token   string
	Session *domain.Session
	User    domain.UserSummary
}

// IdentityService owns the User write path.
type IdentityService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.UserSummary, error)
	CreateUser(ctx context.Context, in RegisterInput) (*domain.UserSummary, error)
	UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*domain.UserSummary, error)
	DeleteUser(ctx context.Context, id string, caller *domain.Session) error
	GetUser(ctx context.Context, id string) (*domain.UserSummary, error)
	ListUsers(ctx context.Context) ([]domain.UserSummary, error)
}

// AuthService implements login and request authentication.
type AuthService interface {
	Login(ctx context.Context, username, email, password string) (*LoginResult, error)
	Authenticate(ctx context.Context, token string) (*domain.Session, error)
}
