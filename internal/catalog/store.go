package catalog

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("product not found")

type Product struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	PriceCents int64  `json:"price_cents"`
	Stock      int    `json:"stock"`
	InStock    bool   `json:"in_stock"`
}

// ProductPatch is a partial update; nil fields are left untouched.
type ProductPatch struct {
	Title      *string `json:"title"`
	Category   *string `json:"category"`
	PriceCents *int64  `json:"price_cents"`
	Stock      *int    `json:"stock"`
	InStock    *bool   `json:"in_stock"`
}

func (p Product) applyPatch(patch ProductPatch) Product {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.PriceCents != nil {
		p.PriceCents = *patch.PriceCents
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.InStock != nil {
		p.InStock = *patch.InStock
	}
	return p
}

type Store interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, bool, error)
	Create(ctx context.Context, p Product) error
	Update(ctx context.Context, id string, patch ProductPatch) (Product, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
