package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/canteen-api/internal/domains/cart/domain"
	"github.com/Apurer/canteen-api/internal/domains/cart/ports"
	"github.com/Apurer/canteen-api/internal/platform/memdb"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory cart store participating in memdb transactions.
// Row locks are implied by the memdb transaction lock.
type Repository struct {
	db         *memdb.DB
	state      state
	nextCartID int64
	nextItemID int64
	now        func() time.Time
}

type state struct {
	carts  map[int64]domain.Cart
	byUser map[int64]int64
	items  map[int64]domain.Item
}

func NewRepository(db *memdb.DB) *Repository {
	r := &Repository{
		db: db,
		state: state{
			carts:  map[int64]domain.Cart{},
			byUser: map[int64]int64{},
			items:  map[int64]domain.Item{},
		},
		now: time.Now,
	}
	db.Register(r)
	return r
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) GetOrCreate(ctx context.Context, userID int64) (*domain.Cart, error) {
	release := r.db.Acquire(ctx)
	defer release()
	if id, ok := r.state.byUser[userID]; ok {
		return r.load(id), nil
	}
	now := r.now()
	r.nextCartID++
	cart := domain.Cart{ID: r.nextCartID, UserID: userID, CreatedAt: now, UpdatedAt: now}
	r.state.carts[cart.ID] = cart
	r.state.byUser[userID] = cart.ID
	return r.load(cart.ID), nil
}

func (r *Repository) Lock(ctx context.Context, cartID int64) (*domain.Cart, error) {
	release := r.db.Acquire(ctx)
	defer release()
	if _, ok := r.state.carts[cartID]; !ok {
		return nil, ports.ErrNotFound
	}
	return r.load(cartID), nil
}

func (r *Repository) UpsertItem(ctx context.Context, cartID, productID int64, quantity int, price decimal.Decimal) error {
	release := r.db.Acquire(ctx)
	defer release()
	if _, ok := r.state.carts[cartID]; !ok {
		return ports.ErrNotFound
	}
	now := r.now()
	for id, item := range r.state.items {
		if item.CartID == cartID && item.ProductID == productID {
			item.Quantity += quantity
			item.Price = price
			item.UpdatedAt = now
			r.state.items[id] = item
			return nil
		}
	}
	r.nextItemID++
	r.state.items[r.nextItemID] = domain.Item{
		ID:        r.nextItemID,
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		Price:     price,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (r *Repository) SetItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	release := r.db.Acquire(ctx)
	defer release()
	item, ok := r.state.items[itemID]
	if !ok {
		return ports.ErrItemNotFound
	}
	item.Quantity = quantity
	item.UpdatedAt = r.now()
	r.state.items[itemID] = item
	return nil
}

func (r *Repository) DeleteItem(ctx context.Context, itemID int64) error {
	release := r.db.Acquire(ctx)
	defer release()
	if _, ok := r.state.items[itemID]; !ok {
		return ports.ErrItemNotFound
	}
	delete(r.state.items, itemID)
	return nil
}

func (r *Repository) ClearItems(ctx context.Context, cartID int64) error {
	release := r.db.Acquire(ctx)
	defer release()
	for id, item := range r.state.items {
		if item.CartID == cartID {
			delete(r.state.items, id)
		}
	}
	return nil
}

func (r *Repository) Touch(ctx context.Context, cartID int64) error {
	release := r.db.Acquire(ctx)
	defer release()
	cart, ok := r.state.carts[cartID]
	if !ok {
		return ports.ErrNotFound
	}
	cart.UpdatedAt = r.now()
	r.state.carts[cartID] = cart
	return nil
}

func (r *Repository) ListIdle(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Cart, error) {
	release := r.db.Acquire(ctx)
	defer release()
	withItems := map[int64]bool{}
	for _, item := range r.state.items {
		withItems[item.CartID] = true
	}
	idle := make([]*domain.Cart, 0)
	for id, cart := range r.state.carts {
		if withItems[id] && cart.UpdatedAt.Before(cutoff) {
			c := cart
			idle = append(idle, &c)
		}
	}
	sort.Slice(idle, func(i, j int) bool { return idle[i].UpdatedAt.Before(idle[j].UpdatedAt) })
	if limit > 0 && len(idle) > limit {
		idle = idle[:limit]
	}
	return idle, nil
}

// load assembles a cart with its items; the caller holds the lock.
func (r *Repository) load(cartID int64) *domain.Cart {
	cart := r.state.carts[cartID]
	cart.Items = nil
	for _, item := range r.state.items {
		if item.CartID == cartID {
			cart.Items = append(cart.Items, item)
		}
	}
	sort.Slice(cart.Items, func(i, j int) bool { return cart.Items[i].ID < cart.Items[j].ID })
	return &cart
}

// Snapshot implements memdb.Table.
func (r *Repository) Snapshot() any {
	s := state{
		carts:  make(map[int64]domain.Cart, len(r.state.carts)),
		byUser: make(map[int64]int64, len(r.state.byUser)),
		items:  make(map[int64]domain.Item, len(r.state.items)),
	}
	for k, v := range r.state.carts {
		s.carts[k] = v
	}
	for k, v := range r.state.byUser {
		s.byUser[k] = v
	}
	for k, v := range r.state.items {
		s.items[k] = v
	}
	return s
}

// Restore implements memdb.Table.
func (r *Repository) Restore(snapshot any) {
	r.state = snapshot.(state)
}
