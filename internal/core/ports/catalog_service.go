package ports

import (
	"context"

	"github.com/storefront/catalog-api/internal/core/domain"
)

type CategoryInput struct {
	Name        *string
	Description *string
}

// ProductInput is used for both create and partial update; nil fields are
// left untouched on update and rejected on create when required.
type ProductInput struct {
	Name          *string
	Brand         *string
	CategoryID    *string
	Price         *float64
	DiscountPrice *float64
	Stock         *int
	Description   *string
	Rating        *float64
	Images        *[]string
}

// ProductView is a product with its category resolved for display.
type ProductView struct {
	domain.Product
	CategoryName    string `json:"category_name,omitempty"`
	CategoryRemoved bool   `json:"category_removed,omitempty"`
}

type CatalogService interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id string, in CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListProducts(ctx context.Context) ([]ProductView, error)
	GetProduct(ctx context.Context, id string) (*ProductView, error)
	CreateProduct(ctx context.Context, in ProductInput) (*ProductView, error)
	UpdateProduct(ctx context.Context, id string, in ProductInput) (*ProductView, error)
	DeleteProduct(ctx context.Context, id string) error
}
