package domain

import "time"

// Category groups products.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product is a catalog item. CategoryID must resolve at write time.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Brand         string    `json:"brand"`
	CategoryID    string    `json:"category_id"`
	Price         float64   `json:"price"`
	DiscountPrice *float64  `json:"discount_price,omitempty"`
	Stock         int       `json:"stock"`
	Description   string    `json:"description"`
	Rating        float64   `json:"rating"`
	Images        []string  `json:"images"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

const MaxRating = 5

// Validate checks the numeric invariants of a product.
func (p *Product) Validate() error {
	switch {
	case p.Price < 0:
		return Invalid("price must not be negative")
	case p.DiscountPrice != nil && *p.DiscountPrice < 0:
		return Invalid("discount_price must not be negative")
	case p.Stock < 0:
		return Invalid("stock must not be negative")
	case p.Rating < 0 || p.Rating > MaxRating:
		return Invalid("rating must be between 0 and %d", MaxRating)
	}
	return nil
}
