package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/storefront/catalog-api/internal/core/domain"
	"github.com/storefront/catalog-api/internal/core/ports"
)

// DefaultRoleName is assigned on self-service registration when no role is
// configured.
const DefaultRoleName = "user"

const maxEmailLength = 254

var emailRules = validator.New()

// IdentityService owns the User write path: uniqueness, role resolution and
// password hashing happen here before anything reaches the repository.
type IdentityService struct {
	users       ports.UserRepository
	refs        *ReferenceEnforcer
	hasher      ports.PasswordHasher
	revocations ports.RevocationList
	audit       ports.AuditRecorder
	defaultRole string
	log         zerolog.Logger
}

// IdentityDeps groups the collaborators of IdentityService. Revocations may
// be nil when no deny-list is configured.
type IdentityDeps struct {
	Users       ports.UserRepository
	Refs        *ReferenceEnforcer
	Hasher      ports.PasswordHasher
	Revocations ports.RevocationList
	Audit       ports.AuditRecorder
	DefaultRole string
}

func NewIdentityService(deps IdentityDeps, log zerolog.Logger) *IdentityService {
	if deps.DefaultRole == "" {
		deps.DefaultRole = DefaultRoleName
	}
	if deps.Audit == nil {
		deps.Audit = DiscardAudit{}
	}
	return &IdentityService{
		users:       deps.Users,
		refs:        deps.Refs,
		hasher:      deps.Hasher,
		revocations: deps.Revocations,
		audit:       deps.Audit,
		defaultRole: deps.DefaultRole,
		log:         log,
	}
}

// Register creates an account through self-service. Only the default role
// may be requested unless the caller can manage users.
func (s *IdentityService) Register(ctx context.Context, in ports.RegisterInput) (*domain.UserSummary, error) {
	return s.create(ctx, in, true)
}

// CreateUser creates an account on behalf of an administrator.
func (s *IdentityService) CreateUser(ctx context.Context, in ports.RegisterInput) (*domain.UserSummary, error) {
	return s.create(ctx, in, false)
}

func (s *IdentityService) create(ctx context.Context, in ports.RegisterInput, selfService bool) (*domain.UserSummary, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, domain.Invalid("username is required")
	}
	// A taken username wins over every other problem with the request.
	if err := s.ensureUsernameFree(ctx, username, ""); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, domain.Invalid("email is required")
	}
	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}
	if err := checkEmail(email); err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, domain.ErrPasswordRequired
	}

	roleRef := strings.TrimSpace(in.Role)
	if roleRef == "" {
		roleRef = s.defaultRole
	}
	role, err := s.refs.ResolveRole(ctx, roleRef)
	if err != nil {
		return nil, err
	}
	if selfService && role.Name != s.defaultRole && !canManageUsers(in.Caller) {
		return nil, fmt.Errorf("%w: only user managers may assign role %q", domain.ErrForbidden, role.Name)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		RoleID:       role.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	eventType := domain.AuditUserCreated
	if selfService {
		eventType = domain.AuditUserRegistered
	}
	s.audit.Record(auditEvent(eventType, created.ID, in.Caller, map[string]string{"role": role.Name}))
	s.log.Info().Str("user_id", created.ID).Str("role", role.Name).Msg("user created")

	summary := domain.Summarize(created, role)
	return &summary, nil
}

// UpdateUser applies a partial update. Absent fields are left untouched; a
// supplied role must resolve and a supplied password is re-hashed.
func (s *IdentityService) UpdateUser(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.UserSummary, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := make([]string, 0, 4)

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, domain.Invalid("username must not be empty")
		}
		if username != user.Username {
			if err := s.ensureUsernameFree(ctx, username, user.ID); err != nil {
				return nil, err
			}
			user.Username = username
			changed = append(changed, "username")
		}
	}

	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" {
			return nil, domain.Invalid("email must not be empty")
		}
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
			if err := checkEmail(email); err != nil {
				return nil, err
			}
			user.Email = email
			changed = append(changed, "email")
		}
	}

	var role *domain.Role
	if in.Role != nil {
		role, err = s.refs.ResolveRole(ctx, *in.Role)
		if err != nil {
			return nil, err
		}
		if role.ID != user.RoleID {
			user.RoleID = role.ID
			changed = append(changed, "role")
		}
	} else {
		role, err = s.refs.LookupRole(ctx, user.RoleID)
		if err != nil {
			return nil, err
		}
	}

	if in.Password != nil {
		if *in.Password == "" {
			return nil, domain.ErrPasswordRequired
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
		changed = append(changed, "password")
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if touchesSessions(changed) {
		s.revoke(ctx, user.ID)
	}
	s.audit.Record(auditEvent(domain.AuditUserUpdated, user.ID, in.Caller, map[string]string{
		"fields": strings.Join(changed, ","),
	}))

	summary := domain.Summarize(user, role)
	return &summary, nil
}

// DeleteUser removes an account. Nothing else is cascaded.
func (s *IdentityService) DeleteUser(ctx context.Context, id string, caller *domain.Session) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.revoke(ctx, id)
	s.audit.Record(auditEvent(domain.AuditUserDeleted, id, caller, nil))
	s.log.Info().Str("user_id", id).Str("actor", actorOf(caller)).Msg("user deleted")
	return nil
}

func (s *IdentityService) GetUser(ctx context.Context, id string) (*domain.UserSummary, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	role, err := s.refs.LookupRole(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}
	summary := domain.Summarize(user, role)
	return &summary, nil
}

// ListUsers returns every user with its role name resolved. Roles are looked
// up once per distinct id.
func (s *IdentityService) ListUsers(ctx context.Context) ([]domain.UserSummary, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	roles := make(map[string]*domain.Role)
	out := make([]domain.UserSummary, 0, len(users))
	for _, u := range users {
		role, seen := roles[u.RoleID]
		if !seen {
			role, err = s.refs.LookupRole(ctx, u.RoleID)
			if err != nil {
				return nil, err
			}
			roles[u.RoleID] = role
		}
		out = append(out, domain.Summarize(u, role))
	}
	return out, nil
}

func (s *IdentityService) ensureUsernameFree(ctx context.Context, username, selfID string) error {
	existing, err := s.users.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check username: %w", err)
	case existing.ID != selfID:
		return domain.ErrUsernameTaken
	}
	return nil
}

func (s *IdentityService) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check email: %w", err)
	case existing.ID != selfID:
		return domain.ErrEmailTaken
	}
	return nil
}

// revoke is best effort: the write already happened, so a deny-list failure
// is logged rather than surfaced.
func (s *IdentityService) revoke(ctx context.Context, subjects ...string) {
	if s.revocations == nil || len(subjects) == 0 {
		return
	}
	if err := s.revocations.Revoke(ctx, subjects, time.Now().UTC()); err != nil {
		s.log.Warn().Err(err).Strs("subjects", subjects).Msg("failed to revoke sessions")
	}
}

func touchesSessions(changed []string) bool {
	for _, f := range changed {
		if f == "role" || f == "password" {
			return true
		}
	}
	return false
}

func checkEmail(email string) error {
	if len(email) > maxEmailLength || emailRules.Var(email, "email") != nil {
		return domain.Invalid("email must be a valid email")
	}
	return nil
}

func canManageUsers(caller *domain.Session) bool {
	return caller != nil && caller.HasPermission(domain.PermManageUsers)
}
