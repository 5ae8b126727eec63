package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/catalog-api/internal/core/domain"
	"github.com/storefront/catalog-api/internal/core/ports"
)

// CatalogService implements category and product CRUD. Product writes
// that set a category pass through the ReferenceEnforcer first.
type CatalogService struct {
	categories ports.CategoryRepository
	products   ports.ProductRepository
	refs       *ReferenceEnforcer
	log        zerolog.Logger
}

func NewCatalogService(categories ports.CategoryRepository, products ports.ProductRepository, refs *ReferenceEnforcer, log zerolog.Logger) *CatalogService {
	return &CatalogService{categories: categories, products: products, refs: refs, log: log}
}

// --- Categories ---

func (s *CatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	cs, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cs, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return s.categories.FindByID(ctx, id)
}

func (s *CatalogService) CreateCategory(ctx context.Context, in ports.CategoryInput) (*domain.Category, error) {
	name := trimmed(in.Name)
	if name == "" {
		return nil, domain.Invalid("name is required")
	}
	now := time.Now().UTC()
	c, err := s.categories.Create(ctx, &domain.Category{
		Name:        name,
		Description: trimmed(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id string, in ports.CategoryInput) (*domain.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := trimmed(in.Name)
		if name == "" {
			return nil, domain.Invalid("name must not be empty")
		}
		c.Name = name
	}
	if in.Description != nil {
		c.Description = trimmed(in.Description)
	}
	c.UpdatedAt = time.Now().UTC()
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// DeleteCategory does not cascade; products keep a dangling reference that
// reads report as removed.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	return s.categories.Delete(ctx, id)
}

// --- Products ---

func (s *CatalogService) ListProducts(ctx context.Context) ([]ports.ProductView, error) {
	ps, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	names := make(map[string]*domain.Category)
	out := make([]ports.ProductView, 0, len(ps))
	for _, p := range ps {
		c, seen := names[p.CategoryID]
		if !seen {
			c, err = s.refs.LookupCategory(ctx, p.CategoryID)
			if err != nil {
				return nil, err
			}
			names[p.CategoryID] = c
		}
		out = append(out, productView(p, c))
	}
	return out, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*ports.ProductView, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, p)
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ports.ProductInput) (*ports.ProductView, error) {
	switch {
	case trimmed(in.Name) == "":
		return nil, domain.Invalid("name is required")
	case trimmed(in.Brand) == "":
		return nil, domain.Invalid("brand is required")
	case trimmed(in.CategoryID) == "":
		return nil, domain.Invalid("category is required")
	case in.Price == nil:
		return nil, domain.Invalid("price is required")
	case in.Stock == nil:
		return nil, domain.Invalid("stock is required")
	case trimmed(in.Description) == "":
		return nil, domain.Invalid("description is required")
	}

	now := time.Now().UTC()
	p := &domain.Product{
		Name:          trimmed(in.Name),
		Brand:         trimmed(in.Brand),
		CategoryID:    trimmed(in.CategoryID),
		Price:         *in.Price,
		DiscountPrice: in.DiscountPrice,
		Stock:         *in.Stock,
		Description:   trimmed(in.Description),
		Images:        []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.Rating != nil {
		p.Rating = *in.Rating
	}
	if in.Images != nil {
		p.Images = cleanLocators(*in.Images)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.refs.CheckCategory(ctx, p.CategoryID); err != nil {
		return nil, err
	}

	created, err := s.products.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.log.Info().Str("product_id", created.ID).Str("category_id", created.CategoryID).Msg("product created")
	return s.view(ctx, created)
}

// UpdateProduct applies a partial update; a supplied category is
// re-validated before the write.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in ports.ProductInput) (*ports.ProductView, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if p.Name = trimmed(in.Name); p.Name == "" {
			return nil, domain.Invalid("name must not be empty")
		}
	}
	if in.Brand != nil {
		if p.Brand = trimmed(in.Brand); p.Brand == "" {
			return nil, domain.Invalid("brand must not be empty")
		}
	}
	if in.Description != nil {
		if p.Description = trimmed(in.Description); p.Description == "" {
			return nil, domain.Invalid("description must not be empty")
		}
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.DiscountPrice != nil {
		p.DiscountPrice = in.DiscountPrice
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Rating != nil {
		p.Rating = *in.Rating
	}
	if in.Images != nil {
		p.Images = cleanLocators(*in.Images)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if in.CategoryID != nil {
		categoryID := trimmed(in.CategoryID)
		if err := s.refs.CheckCategory(ctx, categoryID); err != nil {
			return nil, err
		}
		p.CategoryID = categoryID
	}

	p.UpdatedAt = time.Now().UTC()
	if err := s.products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return s.view(ctx, p)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	return s.products.Delete(ctx, id)
}

func (s *CatalogService) view(ctx context.Context, p *domain.Product) (*ports.ProductView, error) {
	c, err := s.refs.LookupCategory(ctx, p.CategoryID)
	if err != nil {
		return nil, err
	}
	v := productView(p, c)
	return &v, nil
}

func productView(p *domain.Product, c *domain.Category) ports.ProductView {
	v := ports.ProductView{Product: *p}
	if c == nil {
		v.CategoryRemoved = true
	} else {
		v.CategoryName = c.Name
	}
	return v
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func cleanLocators(in []string) []string {
	out := make([]string, 0, len(in))
	for _, l := range in {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
