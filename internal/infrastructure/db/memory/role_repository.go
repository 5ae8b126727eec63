package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/storefront/catalog-api/internal/core/domain"
)

type RoleRepository struct {
	s *Store
}

func cloneRole(r domain.Role) *domain.Role {
	r.Permissions = append([]string{}, r.Permissions...)
	return &r
}

func (r *RoleRepository) FindByID(_ context.Context, id string) (*domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.roles[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	return cloneRole(rec.value), nil
}

func (r *RoleRepository) FindByName(_ context.Context, name string) (*domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rec := range r.s.roles {
		if rec.value.Name == name {
			return cloneRole(rec.value), nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *RoleRepository) List(_ context.Context) ([]*domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	values := sorted(r.s.roles)
	slices.SortStableFunc(values, func(a, b domain.Role) int { return strings.Compare(a.Name, b.Name) })
	out := make([]*domain.Role, len(values))
	for i := range values {
		out[i] = cloneRole(values[i])
	}
	return out, nil
}

func (r *RoleRepository) Create(_ context.Context, role *domain.Role) (*domain.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.nameTaken(role.Name, "") {
		return nil, domain.ErrRoleNameTaken
	}
	id, seq := r.s.next()
	created := cloneRole(*role)
	created.ID = id
	r.s.roles[id] = record[domain.Role]{seq: seq, value: *cloneRole(*created)}
	return created, nil
}

func (r *RoleRepository) Update(_ context.Context, role *domain.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.roles[role.ID]
	if !ok {
		return domain.ErrRoleNotFound
	}
	if r.nameTaken(role.Name, role.ID) {
		return domain.ErrRoleNameTaken
	}
	rec.value = *cloneRole(*role)
	r.s.roles[role.ID] = rec
	return nil
}

func (r *RoleRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.roles[id]; !ok {
		return domain.ErrRoleNotFound
	}
	delete(r.s.roles, id)
	return nil
}

func (r *RoleRepository) nameTaken(name, selfID string) bool {
	for id, rec := range r.s.roles {
		if id != selfID && rec.value.Name == name {
			return true
		}
	}
	return false
}
