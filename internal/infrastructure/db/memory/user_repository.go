package memory

import (
	"context"

	"github.com/storefront/catalog-api/internal/core/domain"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := rec.value
	return &u, nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.findFirst(func(u *domain.User) bool { return u.Username == username })
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.findFirst(func(u *domain.User) bool { return u.Email == email })
}

func (r *UserRepository) FindByLogin(_ context.Context, username, email string) ([]*domain.User, error) {
	if username == "" && email == "" {
		return nil, nil
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*domain.User
	for _, u := range sorted(r.s.users) {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			out = append(out, &u)
			if len(out) == 2 {
				break
			}
		}
	}
	return out, nil
}

func (r *UserRepository) List(_ context.Context) ([]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	values := sorted(r.s.users)
	out := make([]*domain.User, len(values))
	for i := range values {
		out[i] = &values[i]
	}
	return out, nil
}

func (r *UserRepository) ListIDsByRole(_ context.Context, roleID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var ids []string
	for _, u := range sorted(r.s.users) {
		if u.RoleID == roleID {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

func (r *UserRepository) CountByRole(_ context.Context, roleID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, rec := range r.s.users {
		if rec.value.RoleID == roleID {
			n++
		}
	}
	return n, nil
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.checkUnique(user, ""); err != nil {
		return nil, err
	}
	id, seq := r.s.next()
	created := *user
	created.ID = id
	r.s.users[id] = record[domain.User]{seq: seq, value: created}
	return &created, nil
}

func (r *UserRepository) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if err := r.checkUnique(user, user.ID); err != nil {
		return err
	}
	rec.value = *user
	r.s.users[user.ID] = rec
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (r *UserRepository) findFirst(match func(*domain.User) bool) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rec := range r.s.users {
		u := rec.value
		if match(&u) {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// checkUnique must be called with the write lock held.
func (r *UserRepository) checkUnique(user *domain.User, selfID string) error {
	for id, rec := range r.s.users {
		if id == selfID {
			continue
		}
		if rec.value.Username == user.Username {
			return domain.ErrUsernameTaken
		}
		if rec.value.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	return nil
}
