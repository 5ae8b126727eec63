package domain

import (
	"slices"
	"time"
)

// Role is a named, reusable set of permissions assigned to users.
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasPermission reports whether the role grants p.
func (r *Role) HasPermission(p string) bool {
	return slices.Contains(r.Permissions, p)
}

// PermissionSnapshot returns a copy of the permission set, safe to embed in
// a session without aliasing the role.
func (r *Role) PermissionSnapshot() []string {
	if r == nil {
		return []string{}
	}
	return append([]string{}, r.Permissions...)
}
