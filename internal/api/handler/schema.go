package handler

import (
	"time"

	"github.com/storefront/catalog-api/internal/core/domain"
)

// errorResponse documents the error envelope rendered by the central error
// handler.
type errorResponse struct {
	Code  string `json:"code"  example:"InvalidCredentials"`
	Error string `json:"error" example:"invalid credentials"`
}

type messageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// --- Users ---

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type loginRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	User      domain.UserSummary `json:"user"`
}

type meResponse struct {
	User        domain.UserSummary `json:"user"`
	Permissions []string           `json:"permissions"`
	ExpiresAt   time.Time          `json:"expires_at"`
}

type updateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=1,max=64"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
}

// --- Roles ---

type createRoleRequest struct {
	Name        string   `json:"name"        validate:"required,max=64"`
	Description string   `json:"description" validate:"max=512"`
	Permissions []string `json:"permissions"`
}

type updateRoleRequest struct {
	Name        *string   `json:"name,omitempty"        validate:"omitempty,min=1,max=64"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=512"`
	Permissions *[]string `json:"permissions,omitempty"`
}

// --- Catalog ---

type categoryRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitempty,max=128"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1024"`
}

type productRequest struct {
	Name          *string   `json:"name,omitempty"           validate:"omitempty,max=256"`
	Brand         *string   `json:"brand,omitempty"          validate:"omitempty,max=128"`
	Category      *string   `json:"category,omitempty"`
	Price         *float64  `json:"price,omitempty"          validate:"omitempty,gte=0"`
	DiscountPrice *float64  `json:"discount_price,omitempty" validate:"omitempty,gte=0"`
	Stock         *int      `json:"stock,omitempty"          validate:"omitempty,gte=0"`
	Description   *string   `json:"description,omitempty"`
	Rating        *float64  `json:"rating,omitempty"         validate:"omitempty,gte=0,lte=5"`
	Images        *[]string `json:"images,omitempty"`
}
