// Package memory provides process-local implementations of the repository
// ports. They enforce the same uniqueness rules as the MongoDB indexes and are
// used for development and tests.
package memory

import (
	"cmp"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/storefront/catalog-api/internal/core/domain"
)

type record[T any] struct {
	seq   int64
	value T
}

// Store holds every collection behind a single lock.
type Store struct {
	mu         sync.RWMutex
	seq        int64
	users      map[string]record[domain.User]
	roles      map[string]record[domain.Role]
	categories map[string]record[domain.Category]
	products   map[string]record[domain.Product]
	audit      []domain.AuditEvent
}

func NewStore() *Store {
	return &Store{
		users:      make(map[string]record[domain.User]),
		roles:      make(map[string]record[domain.Role]),
		categories: make(map[string]record[domain.Category]),
		products:   make(map[string]record[domain.Product]),
	}
}

func (s *Store) Users() *UserRepository          { return &UserRepository{s: s} }
func (s *Store) Roles() *RoleRepository          { return &RoleRepository{s: s} }
func (s *Store) Categories() *CategoryRepository { return &CategoryRepository{s: s} }
func (s *Store) Products() *ProductRepository    { return &ProductRepository{s: s} }
func (s *Store) Audit() *AuditRepository         { return &AuditRepository{s: s} }

// next must be called with the write lock held.
func (s *Store) next() (string, int64) {
	s.seq++
	return uuid.NewString(), s.seq
}

// sorted returns the values of m in insertion order.
func sorted[T any](m map[string]record[T]) []T {
	recs := make([]record[T], 0, len(m))
	for _, r := range m {
		recs = append(recs, r)
	}
	slices.SortFunc(recs, func(a, b record[T]) int { return cmp.Compare(a.seq, b.seq) })

	out := make([]T, len(recs))
	for i, r := range recs {
		out[i] = r.value
	}
	return out
}
