package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/Apurer/canteen-api/internal/domains/catalog/domain"
	"github.com/Apurer/canteen-api/internal/domains/catalog/ports"
	"github.com/Apurer/canteen-api/internal/platform/memdb"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory product store participating in memdb transactions.
type Repository struct {
	db       *memdb.DB
	products map[int64]*domain.Product
	nextID   int64
	now      func() time.Time
}

func NewRepository(db *memdb.DB) *Repository {
	r := &Repository{db: db, products: map[int64]*domain.Product{}, now: time.Now}
	db.Register(r)
	return r
}

func (r *Repository) Get(ctx context.Context, id int64) (*domain.Product, error) {
	release := r.db.Acquire(ctx)
	defer release()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return product.Clone(), nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Product, error) {
	release := r.db.Acquire(ctx)
	defer release()

	query := strings.ToLower(filter.Query)
	list := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		if filter.Tag != "" && !p.HasTag(filter.Tag) {
			continue
		}
		if filter.InStockOnly && p.StockQuantity <= 0 {
			continue
		}
		list = append(list, p.Clone())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	if filter.Offset >= len(list) {
		return []*domain.Product{}, nil
	}
	list = list[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(list) {
		list = list[:filter.Limit]
	}
	return list, nil
}

func (r *Repository) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	release := r.db.Acquire(ctx)
	defer release()

	clone := product.Clone()
	now := r.now()
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
		clone.CreatedAt = now
	} else {
		existing, ok := r.products[clone.ID]
		if !ok {
			return nil, ports.ErrNotFound
		}
		clone.CreatedAt = existing.CreatedAt
	}
	clone.UpdatedAt = now
	r.products[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	release := r.db.Acquire(ctx)
	defer release()
	if _, ok := r.products[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *Repository) AdjustStock(ctx context.Context, id int64, delta int) (*domain.Product, error) {
	release := r.db.Acquire(ctx)
	defer release()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if product.StockQuantity+delta < 0 {
		return nil, ports.ErrInsufficientStock
	}
	product.StockQuantity += delta
	product.UpdatedAt = r.now()
	return product.Clone(), nil
}

// Snapshot implements memdb.Table.
func (r *Repository) Snapshot() any {
	copied := make(map[int64]*domain.Product, len(r.products))
	for id, p := range r.products {
		copied[id] = p.Clone()
	}
	return copied
}

// Restore implements memdb.Table.
func (r *Repository) Restore(state any) {
	r.products = state.(map[int64]*domain.Product)
}
