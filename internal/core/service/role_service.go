package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/catalog-api/internal/core/domain"
	"github.com/storefront/catalog-api/internal/core/ports"
)

// DefaultAdminRoleName holds every permission in the catalog.
const DefaultAdminRoleName = "admin"

type RoleService struct {
	roles       ports.RoleRepository
	users       ports.UserRepository
	refs        *ReferenceEnforcer
	revocations ports.RevocationList
	audit       ports.AuditRecorder
	defaultRole string
	adminRole   string
	log         zerolog.Logger
}

// RoleDeps groups the collaborators of RoleService. Revocations may be nil.
type RoleDeps struct {
	Roles       ports.RoleRepository
	Users       ports.UserRepository
	Refs        *ReferenceEnforcer
	Revocations ports.RevocationList
	Audit       ports.AuditRecorder
	DefaultRole string
	AdminRole   string
}

func NewRoleService(deps RoleDeps, log zerolog.Logger) *RoleService {
	if deps.DefaultRole == "" {
		deps.DefaultRole = DefaultRoleName
	}
	if deps.AdminRole == "" {
		deps.AdminRole = DefaultAdminRoleName
	}
	if deps.Audit == nil {
		deps.Audit = DiscardAudit{}
	}
	return &RoleService{
		roles:       deps.Roles,
		users:       deps.Users,
		refs:        deps.Refs,
		revocations: deps.Revocations,
		audit:       deps.Audit,
		defaultRole: deps.DefaultRole,
		adminRole:   deps.AdminRole,
		log:         log,
	}
}

func (s *RoleService) CreateRole(ctx context.Context, in ports.CreateRoleInput) (*domain.Role, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name is required")
	}
	perms, err := domain.NormalizePermissions(in.Permissions)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.roles.Create(ctx, &domain.Role{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Permissions: perms,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}

	s.audit.Record(auditEvent(domain.AuditRoleCreated, created.ID, in.Caller, map[string]string{
		"name":        created.Name,
		"permissions": strings.Join(created.Permissions, ","),
	}))
	return created, nil
}

// UpdateRole applies a partial update. Users reference roles by id, so a
// rename keeps them attached; already issued tokens keep their snapshot
// unless the deny-list revokes them.
func (s *RoleService) UpdateRole(ctx context.Context, id string, in ports.UpdateRoleInput) (*domain.Role, error) {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name must not be empty")
		}
		if name != role.Name {
			if s.isSystem(role) {
				return nil, domain.ErrRoleProtected
			}
			if err := s.ensureNameFree(ctx, name, role.ID); err != nil {
				return nil, err
			}
			role.Name = name
		}
	}

	if in.Description != nil {
		role.Description = strings.TrimSpace(*in.Description)
	}

	permsChanged := false
	if in.Permissions != nil {
		perms, err := domain.NormalizePermissions(*in.Permissions)
		if err != nil {
			return nil, err
		}
		if role.Name == s.adminRole && !keepsAdministration(perms) {
			return nil, fmt.Errorf("%w: %s must keep %s and %s", domain.ErrRoleProtected,
				role.Name, domain.PermManageUsers, domain.PermManageRoles)
		}
		permsChanged = !slices.Equal(perms, role.Permissions)
		role.Permissions = perms
	}

	role.UpdatedAt = time.Now().UTC()
	if err := s.roles.Update(ctx, role); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	if permsChanged {
		s.revokeHolders(ctx, role.ID)
	}
	s.audit.Record(auditEvent(domain.AuditRoleUpdated, role.ID, in.Caller, map[string]string{
		"name":        role.Name,
		"permissions": strings.Join(role.Permissions, ","),
	}))
	return role, nil
}

// DeleteRole refuses to delete system roles and roles still referenced by a
// user; nothing is cascaded.
func (s *RoleService) DeleteRole(ctx context.Context, id string, caller *domain.Session) error {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if s.isSystem(role) {
		return domain.ErrRoleProtected
	}
	if err := s.refs.CheckRoleUnreferenced(ctx, role.ID); err != nil {
		return err
	}
	if err := s.roles.Delete(ctx, role.ID); err != nil {
		return err
	}

	s.audit.Record(auditEvent(domain.AuditRoleDeleted, role.ID, caller, map[string]string{"name": role.Name}))
	s.log.Info().Str("role_id", role.ID).Str("name", role.Name).Msg("role deleted")
	return nil
}

func (s *RoleService) GetRole(ctx context.Context, id string) (*domain.Role, error) {
	return s.roles.FindByID(ctx, id)
}

func (s *RoleService) ListRoles(ctx context.Context) ([]*domain.Role, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// EnsureSystemRoles creates the default and admin roles when missing.
// Existing roles are left as they are.
func (s *RoleService) EnsureSystemRoles(ctx context.Context) error {
	system := []domain.Role{
		{Name: s.defaultRole, Description: "Default role for self-registered accounts", Permissions: []string{}},
		{Name: s.adminRole, Description: "Full administrative access", Permissions: slices.Sorted(slices.Values(domain.PermissionCatalog))},
	}

	for _, r := range system {
		_, err := s.roles.FindByName(ctx, r.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrRoleNotFound) {
			return fmt.Errorf("seed role %s: %w", r.Name, err)
		}

		now := time.Now().UTC()
		r.CreatedAt, r.UpdatedAt = now, now
		created, err := s.roles.Create(ctx, &r)
		if err != nil && !errors.Is(err, domain.ErrRoleNameTaken) {
			return fmt.Errorf("seed role %s: %w", r.Name, err)
		}
		if created != nil {
			s.log.Info().Str("role_id", created.ID).Str("name", created.Name).Msg("system role created")
		}
	}
	return nil
}

// keepsAdministration reports whether perms still let a holder manage users
// and roles, so the admin role can never lock everyone out.
func keepsAdministration(perms []string) bool {
	return slices.Contains(perms, domain.PermManageUsers) && slices.Contains(perms, domain.PermManageRoles)
}

func (s *RoleService) isSystem(role *domain.Role) bool {
	return role.Name == s.defaultRole || role.Name == s.adminRole
}

func (s *RoleService) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.roles.FindByName(ctx, name)
	switch {
	case errors.Is(err, domain.ErrRoleNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check role name: %w", err)
	case existing.ID != selfID:
		return domain.ErrRoleNameTaken
	}
	return nil
}

// revokeHolders revokes every session whose snapshot came from roleID.
func (s *RoleService) revokeHolders(ctx context.Context, roleID string) {
	if s.revocations == nil {
		return
	}
	ids, err := s.users.ListIDsByRole(ctx, roleID)
	if err != nil {
		s.log.Warn().Err(err).Str("role_id", roleID).Msg("failed to list role holders for revocation")
		return
	}
	if len(ids) == 0 {
		return
	}
	if err := s.revocations.Revoke(ctx, ids, time.Now().UTC()); err != nil {
		s.log.Warn().Err(err).Str("role_id", roleID).Msg("failed to revoke role holders")
	}
}
