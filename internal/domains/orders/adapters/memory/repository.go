package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/Apurer/canteen-api/internal/domains/orders/domain"
	"github.com/Apurer/canteen-api/internal/domains/orders/ports"
	"github.com/Apurer/canteen-api/internal/platform/memdb"
)

var (
	_ ports.Repository        = (*Repository)(nil)
	_ ports.PaymentRepository = (*PaymentRepository)(nil)
)

// tables holds orders and payments together so deleting an order can drop its payment.
type tables struct {
	db            *memdb.DB
	orders        map[int64]*domain.Order
	payments      map[int64]*domain.Payment
	nextOrderID   int64
	nextItemID    int64
	nextPaymentID int64
	now           func() time.Time
}

type snapshot struct {
	orders   map[int64]*domain.Order
	payments map[int64]*domain.Payment
}

// Repository is the in-memory order adapter.
type Repository struct{ t *tables }

// PaymentRepository is the in-memory payment adapter.
type PaymentRepository struct{ t *tables }

// New builds the order and payment repositories over shared in-memory tables.
func New(db *memdb.DB) (*Repository, *PaymentRepository) {
	t := &tables{
		db:       db,
		orders:   map[int64]*domain.Order{},
		payments: map[int64]*domain.Payment{},
		now:      time.Now,
	}
	db.Register(t)
	return &Repository{t: t}, &PaymentRepository{t: t}
}

func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	release := r.t.db.Acquire(ctx)
	defer release()
	clone := order.Clone()
	r.t.nextOrderID++
	clone.ID = r.t.nextOrderID
	now := r.t.now()
	clone.CreatedAt, clone.UpdatedAt = now, now
	for i := range clone.Items {
		r.t.nextItemID++
		clone.Items[i].ID = r.t.nextItemID
		clone.Items[i].OrderID = clone.ID
	}
	r.t.orders[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*domain.Order, error) {
	release := r.t.db.Acquire(ctx)
	defer release()
	order, ok := r.t.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *Repository) Lock(ctx context.Context, id int64) (*domain.Order, error) {
	return r.Get(ctx, id)
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Order, error) {
	release := r.t.db.Acquire(ctx)
	defer release()
	list := make([]*domain.Order, 0, len(r.t.orders))
	for _, order := range r.t.orders {
		if filter.UserID != nil && order.UserID != *filter.UserID {
			continue
		}
		list = append(list, order.Clone())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (r *Repository) Update(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	release := r.t.db.Acquire(ctx)
	defer release()
	existing, ok := r.t.orders[order.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	existing.Status = order.Status
	existing.PaymentStatus = order.PaymentStatus
	existing.ShippingAddress = order.ShippingAddress
	existing.TrackingNumber = order.TrackingNumber
	existing.ExpectedDeliveryDate = nil
	if order.ExpectedDeliveryDate != nil {
		d := *order.ExpectedDeliveryDate
		existing.ExpectedDeliveryDate = &d
	}
	existing.UpdatedAt = r.t.now()
	return existing.Clone(), nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	release := r.t.db.Acquire(ctx)
	defer release()
	if _, ok := r.t.orders[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.t.orders, id)
	for pid, p := range r.t.payments {
		if p.OrderID == id {
			delete(r.t.payments, pid)
		}
	}
	return nil
}

func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	if payment == nil {
		return nil, errors.New("payment is nil")
	}
	release := r.t.db.Acquire(ctx)
	defer release()
	if _, ok := r.t.orders[payment.OrderID]; !ok {
		return nil, ports.ErrNotFound
	}
	for _, p := range r.t.payments {
		if p.OrderID == payment.OrderID {
			return nil, ports.ErrPaymentExists
		}
	}
	clone := *payment
	r.t.nextPaymentID++
	clone.ID = r.t.nextPaymentID
	now := r.t.now()
	clone.CreatedAt, clone.UpdatedAt = now, now
	r.t.payments[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *PaymentRepository) Get(ctx context.Context, id int64) (*domain.Payment, error) {
	release := r.t.db.Acquire(ctx)
	defer release()
	p, ok := r.t.payments[id]
	if !ok {
		return nil, ports.ErrPaymentNotFound
	}
	out := *p
	return &out, nil
}

func (r *PaymentRepository) GetByOrder(ctx context.Context, orderID int64) (*domain.Payment, error) {
	release := r.t.db.Acquire(ctx)
	defer release()
	for _, p := range r.t.payments {
		if p.OrderID == orderID {
			out := *p
			return &out, nil
		}
	}
	return nil, ports.ErrPaymentNotFound
}

func (r *PaymentRepository) Lock(ctx context.Context, id int64) (*domain.Payment, error) {
	return r.Get(ctx, id)
}

func (r *PaymentRepository) Update(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	if payment == nil {
		return nil, errors.New("payment is nil")
	}
	release := r.t.db.Acquire(ctx)
	defer release()
	existing, ok := r.t.payments[payment.ID]
	if !ok {
		return nil, ports.ErrPaymentNotFound
	}
	existing.Status = payment.Status
	existing.TransactionID = payment.TransactionID
	existing.UpdatedAt = r.t.now()
	out := *existing
	return &out, nil
}

// Snapshot implements memdb.Table.
func (t *tables) Snapshot() any {
	s := snapshot{
		orders:   make(map[int64]*domain.Order, len(t.orders)),
		payments: make(map[int64]*domain.Payment, len(t.payments)),
	}
	for id, o := range t.orders {
		s.orders[id] = o.Clone()
	}
	for id, p := range t.payments {
		copied := *p
		s.payments[id] = &copied
	}
	return s
}

// Restore implements memdb.Table.
func (t *tables) Restore(state any) {
	s := state.(snapshot)
	t.orders = s.orders
	t.payments = s.payments
}
