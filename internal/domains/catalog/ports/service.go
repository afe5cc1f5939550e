package ports

import (
	"context"

	"github.com/Apurer/canteen-api/internal/domains/catalog/domain"
	"github.com/Apurer/canteen-api/internal/shared/principal"
)

// Service exposes catalog use cases to adapters.
type Service interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]*domain.Product, error)
	UpsertProduct(ctx context.Context, caller principal.Principal, product *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, caller principal.Principal, id int64) error
	AdjustStock(ctx context.Context, id int64, delta int) (*domain.Product, error)
}
