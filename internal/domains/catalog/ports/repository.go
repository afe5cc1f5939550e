package ports

import (
	"context"
	"fmt"

	"github.com/Apurer/canteen-api/internal/domains/catalog/domain"
	"github.com/Apurer/canteen-api/internal/shared/failure"
)

var (
	ErrNotFound          = fmt.Errorf("product %w", failure.ErrNotFound)
	ErrInsufficientStock = fmt.Errorf("product has %w", failure.ErrInsufficientStock)
)

// ListFilter narrows product listings. Zero values match everything.
type ListFilter struct {
	Query       string
	Tag         string
	InStockOnly bool
	Limit       int
	Offset      int
}

// Repository persists products and their stock counters.
type Repository interface {
	Get(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.Product, error)
	// Save inserts a product when ID is zero and replaces it otherwise.
	// Replacing an unknown ID returns ErrNotFound.
	Save(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	// AdjustStock atomically adds delta to the stock counter. It returns
	// ErrInsufficientStock, leaving the counter untouched, when the result
	// would be negative.
	AdjustStock(ctx context.Context, id int64, delta int) (*domain.Product, error)
}
