package domain

import (
	"sort"
	"strings"
)

// Permissions recognised by the authorization guard.
const (
	PermManageUsers      = "manage-users"
	PermViewUsers        = "view-users"
	PermManageRoles      = "manage-roles"
	PermManageCategories = "manage-categories"
	PermManageProducts   = "manage-products"
)

// PermissionCatalog is the closed set of permission strings a Role may hold.
var PermissionCatalog = []string{
	PermManageUsers,
	PermViewUsers,
	PermManageRoles,
	PermManageCategories,
	PermManageProducts,
}

// IsKnownPermission reports whether p belongs to PermissionCatalog.
func IsKnownPermission(p string) bool {
	for _, known := range PermissionCatalog {
		if known == p {
			return true
		}
	}
	return false
}

// NormalizePermissions trims, de-duplicates and sorts a permission list and
// rejects anything outside the catalog. A nil input yields an empty set.
func NormalizePermissions(perms []string) ([]string, error) {
	seen := make(map[string]struct{}, len(perms))
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !IsKnownPermission(p) {
			return nil, &PermissionError{Permission: p}
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

// PermissionError names a permission outside the catalog.
type PermissionError struct {
	Permission string
}

func (e *PermissionError) Error() string {
	return "unknown permission: " + e.Permission
}

func (e *PermissionError) Unwrap() error { return ErrUnknownPermission }
