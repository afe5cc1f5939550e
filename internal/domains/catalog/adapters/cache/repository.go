// Package cache keeps a Redis read-through copy of product rows in front of
// the authoritative catalog repository.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/Apurer/canteen-api/internal/domains/catalog/domain"
	"github.com/Apurer/canteen-api/internal/domains/catalog/ports"
	"github.com/Apurer/canteen-api/internal/shared/tx"
)

const defaultTTL = 30 * time.Second

var _ ports.Repository = (*Repository)(nil)

// Repository decorates a catalog repository with a Redis cache for single-product reads.
// Reads inside a transaction always hit the inner repository so stock checks see
// locked, current rows. Every write invalidates the cached entry once its
// transaction commits, so a read racing the commit cannot re-cache old rows.
type Repository struct {
	inner  ports.Repository
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

type Option func(*Repository)

func WithTTL(ttl time.Duration) Option {
	return func(r *Repository) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

func New(inner ports.Repository, client redis.UniversalClient, opts ...Option) *Repository {
	r := &Repository{inner: inner, client: client, ttl: defaultTTL}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Repository) Get(ctx context.Context, id int64) (*domain.Product, error) {
	if tx.Active(ctx) {
		return r.inner.Get(ctx, id)
	}
	if cached, err := r.load(ctx, id); err == nil {
		return cached, nil
	} else if !errors.Is(err, redis.Nil) {
		r.warn(ctx, "product cache read failed", id, err)
	}

	product, err := r.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.store(ctx, product); err != nil {
		r.warn(ctx, "product cache write failed", id, err)
	}
	return product, nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Product, error) {
	return r.inner.List(ctx, filter)
}

func (r *Repository) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	saved, err := r.inner.Save(ctx, product)
	if err != nil {
		return nil, err
	}
	r.invalidateAfterCommit(ctx, saved.ID)
	return saved, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidateAfterCommit(ctx, id)
	return nil
}

func (r *Repository) AdjustStock(ctx context.Context, id int64, delta int) (*domain.Product, error) {
	product, err := r.inner.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	r.invalidateAfterCommit(ctx, id)
	return product, nil
}

func (r *Repository) load(ctx context.Context, id int64) (*domain.Product, error) {
	data, err := r.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var entry cachedProduct
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshal cached product: %w", err)
	}
	return entry.toDomain(), nil
}

func (r *Repository) store(ctx context.Context, product *domain.Product) error {
	data, err := json.Marshal(fromDomain(product))
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	return r.client.Set(ctx, cacheKey(product.ID), data, r.ttl).Err()
}

func (r *Repository) invalidateAfterCommit(ctx context.Context, id int64) {
	tx.AfterCommit(ctx, func(ctx context.Context) { r.invalidate(ctx, id) })
}

func (r *Repository) invalidate(ctx context.Context, id int64) {
	if err := r.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		r.warn(ctx, "product cache invalidation failed", id, err)
	}
}

func (r *Repository) warn(ctx context.Context, msg string, id int64, err error) {
	if r.logger == nil {
		return
	}
	r.logger.LogAttrs(ctx, slog.LevelWarn, msg, slog.Int64("product.id", id), slog.String("error", err.Error()))
}

func cacheKey(id int64) string {
	return fmt.Sprintf("catalog:product:%d", id)
}

type cachedProduct struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Price           decimal.Decimal  `json:"price"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price,omitempty"`
	StockQuantity   int              `json:"stock_quantity"`
	ImageURL        string           `json:"image_url"`
	Size            string           `json:"size,omitempty"`
	Color           string           `json:"color,omitempty"`
	Tags            []string         `json:"tags,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func fromDomain(p *domain.Product) cachedProduct {
	return cachedProduct{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		DiscountedPrice: p.DiscountedPrice,
		StockQuantity:   p.StockQuantity,
		ImageURL:        p.ImageURL,
		Size:            p.Size,
		Color:           p.Color,
		Tags:            p.Tags,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (c cachedProduct) toDomain() *domain.Product {
	return &domain.Product{
		ID:              c.ID,
		Name:            c.Name,
		Description:     c.Description,
		Price:           c.Price,
		DiscountedPrice: c.DiscountedPrice,
		StockQuantity:   c.StockQuantity,
		ImageURL:        c.ImageURL,
		Size:            c.Size,
		Color:           c.Color,
		Tags:            c.Tags,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
