package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Apurer/canteen-api/internal/domains/catalog/domain"
	"github.com/Apurer/canteen-api/internal/domains/catalog/ports"
	"github.com/Apurer/canteen-api/internal/shared/failure"
	"github.com/Apurer/canteen-api/internal/shared/principal"
)

const maxPageSize = 200

// Service orchestrates catalog use cases.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, filter ports.ListFilter) ([]*domain.Product, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	filter.Tag = strings.TrimSpace(filter.Tag)
	if filter.Limit <= 0 || filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) UpsertProduct(ctx context.Context, caller principal.Principal, product *domain.Product) (*domain.Product, error) {
	if !caller.IsAdmin() {
		return nil, errAdminOnly
	}
	if product == nil {
		return nil, errors.New("product is nil")
	}
	product.Name = strings.TrimSpace(product.Name)
	if err := product.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Save(ctx, product)
}

func (s *Service) DeleteProduct(ctx context.Context, caller principal.Principal, id int64) error {
	if !caller.IsAdmin() {
		return errAdminOnly
	}
	return s.repo.Delete(ctx, id)
}

// AdjustStock moves stock by delta; negative deltas reserve, positive ones release.
func (s *Service) AdjustStock(ctx context.Context, id int64, delta int) (*domain.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: product id must be positive", failure.ErrValidation)
	}
	return s.repo.AdjustStock(ctx, id, delta)
}

var _ ports.Service = (*Service)(nil)
