package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/storefront/catalog-api/internal/core/domain"
)

type CategoryRepository struct {
	s *Store
}

func (r *CategoryRepository) FindByID(_ context.Context, id string) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	c := rec.value
	return &c, nil
}

func (r *CategoryRepository) List(_ context.Context) ([]*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	values := sorted(r.s.categories)
	slices.SortStableFunc(values, func(a, b domain.Category) int { return strings.Compare(a.Name, b.Name) })
	out := make([]*domain.Category, len(values))
	for i := range values {
		out[i] = &values[i]
	}
	return out, nil
}

func (r *CategoryRepository) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, seq := r.s.next()
	created := *c
	created.ID = id
	r.s.categories[id] = record[domain.Category]{seq: seq, value: created}
	return &created, nil
}

func (r *CategoryRepository) Update(_ context.Context, c *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.categories[c.ID]
	if !ok {
		return domain.ErrCategoryNotFound
	}
	rec.value = *c
	r.s.categories[c.ID] = rec
	return nil
}

func (r *CategoryRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(r.s.categories, id)
	return nil
}

type ProductRepository struct {
	s *Store
}

func cloneProduct(p domain.Product) *domain.Product {
	p.Images = append([]string{}, p.Images...)
	if p.DiscountPrice != nil {
		d := *p.DiscountPrice
		p.DiscountPrice = &d
	}
	return &p
}

func (r *ProductRepository) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return cloneProduct(rec.value), nil
}

// List returns products newest first.
func (r *ProductRepository) List(_ context.Context) ([]*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	values := sorted(r.s.products)
	slices.Reverse(values)
	out := make([]*domain.Product, len(values))
	for i := range values {
		out[i] = cloneProduct(values[i])
	}
	return out, nil
}

func (r *ProductRepository) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, seq := r.s.next()
	created := cloneProduct(*p)
	created.ID = id
	r.s.products[id] = record[domain.Product]{seq: seq, value: *cloneProduct(*created)}
	return created, nil
}

func (r *ProductRepository) Update(_ context.Context, p *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.products[p.ID]
	if !ok {
		return domain.ErrProductNotFound
	}
	rec.value = *cloneProduct(*p)
	r.s.products[p.ID] = rec
	return nil
}

func (r *ProductRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.s.products, id)
	return nil
}
