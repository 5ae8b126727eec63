package domain

import (
	"slices"
	"time"
)

// Session is the decoded content of a session token. Permissions is the
// role's permission set at issuance time, not a live reference.
type Session struct {
	TokenID     string    `json:"jti"`
	Subject     string    `json:"sub"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
	IssuedAt    time.Time `json:"iat"`
	ExpiresAt   time.Time `json:"exp"`
}

// HasPermission reports whether the snapshot grants p.
func (s *Session) HasPermission(p string) bool {
	return slices.Contains(s.Permissions, p)
}
