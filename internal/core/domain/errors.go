package domain

import (
	"errors"
	"fmt"
)

// Validation and identity errors.
var (
	ErrValidation        = errors.New("validation failed")
	ErrUsernameTaken     = errors.New("username already in use")
	ErrEmailTaken        = errors.New("email already in use")
	ErrPasswordRequired  = errors.New("password is required")
	ErrInvalidRole       = errors.New("invalid role")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrUnknownPermission = errors.New("unknown permission")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCorruptCredential  = errors.New("stored credential is malformed")
)

// Session errors.
var (
	ErrTokenMissing          = errors.New("missing token")
	ErrTokenMalformed        = errors.New("malformed token")
	ErrTokenInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenRevoked          = errors.New("token revoked")
	ErrForbidden             = errors.New("access forbidden")
)

// Lookup errors.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrRoleNotFound     = errors.New("role not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
)

// Integrity errors.
var (
	ErrInvalidReference = errors.New("invalid reference")
	ErrReferenceInUse   = errors.New("reference in use")
	ErrRoleNameTaken    = errors.New("role name already in use")
	ErrRoleProtected    = errors.New("system role cannot be renamed or deleted")
)

// Reference entities named by ReferenceError.
const (
	RefRole     = "role"
	RefCategory = "category"
)

// ReferenceError reports a cross-entity reference that does not resolve.
// It matches both ErrInvalidReference and the entity-specific sentinel.
type ReferenceError struct {
	Entity string
	Key    string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("invalid reference: %s %q does not exist", e.Entity, e.Key)
}

func (e *ReferenceError) Unwrap() []error {
	switch e.Entity {
	case RefRole:
		return []error{ErrInvalidReference, ErrInvalidRole}
	case RefCategory:
		return []error{ErrInvalidReference, ErrInvalidCategory}
	default:
		return []error{ErrInvalidReference}
	}
}

// ValidationError carries a client-safe description of a rejected field.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError.
func Invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
