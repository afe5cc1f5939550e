package application

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/Apurer/canteen-api/internal/domains/orders/domain"
	"github.com/Apurer/canteen-api/internal/domains/orders/ports"
	"github.com/Apurer/canteen-api/internal/platform/outbox"
	"github.com/Apurer/canteen-api/internal/shared/failure"
	"github.com/Apurer/canteen-api/internal/shared/principal"
	"github.com/Apurer/canteen-api/internal/shared/tx"
)

// Service orchestrates order query and management use cases.
type Service struct {
	orders    ports.Repository
	payments  ports.PaymentRepository
	inventory ports.Inventory
	events    outbox.Store
	tx        tx.Transactor
	currency  string
	now       func() time.Time
}

type Option func(*Service)

// WithDefaultCurrency sets the currency of payments created alongside manual orders.
func WithDefaultCurrency(currency string) Option {
	return func(s *Service) {
		if c := strings.TrimSpace(currency); c != "" {
			s.currency = c
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(orders ports.Repository, payments ports.PaymentRepository, inventory ports.Inventory, events outbox.Store, transactor tx.Transactor, opts ...Option) *Service {
	s := &Service{
		orders:    orders,
		payments:  payments,
		inventory: inventory,
		events:    events,
		tx:        transactor,
		currency:  domain.DefaultCurrency,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// ListOrders returns every order to admins and only their own to users.
func (s *Service) ListOrders(ctx context.Context, caller principal.Principal) ([]*domain.Order, error) {
	if caller.UserID <= 0 {
		return nil, errNoCaller
	}
	filter := ports.ListFilter{}
	if !caller.IsAdmin() {
		owner := caller.UserID
		filter.UserID = &owner
	}
	return s.orders.List(ctx, filter)
}

func (s *Service) GetOrder(ctx context.Context, caller principal.Principal, id int64) (*domain.Order, error) {
	if caller.UserID <= 0 {
		return nil, errNoCaller
	}
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(order.UserID) {
		return nil, errNotOwner
	}
	return order, nil
}

// CreateOrder records an order entered by an admin, priced from the catalog.
// Every line is reserved from stock in the same transaction, so a later
// cancellation returns exactly what was taken.
func (s *Service) CreateOrder(ctx context.Context, caller principal.Principal, input ports.CreateOrderInput) (*domain.Order, error) {
	if !caller.IsAdmin() {
		return nil, errAdminOnly
	}
	if input.UserID <= 0 {
		return nil, mapError(errMissingUser)
	}
	var created *domain.Order
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		items := make([]domain.Item, 0, len(input.Items))
		for _, line := range input.Items {
			product, err := s.inventory.Lookup(ctx, line.ProductID)
			if err != nil {
				return err
			}
			items = append(items, domain.Item{ProductID: product.ID, Quantity: line.Quantity, Price: product.UnitPrice})
		}
		order, err := domain.NewOrder(input.UserID, items, input.PaymentMethod, input.ShippingAddress)
		if err != nil {
			return err
		}
		if err := s.reserve(ctx, order.Items); err != nil {
			return err
		}
		created, err = s.orders.Create(ctx, order)
		if err != nil {
			return err
		}
		payment, err := domain.NewPendingPayment(created.ID, created.TotalAmount, s.currency, created.PaymentMethod)
		if err != nil {
			return err
		}
		if _, err := s.payments.Create(ctx, payment); err != nil {
			return err
		}
		return s.append(ctx, domain.AggregateOrder, created.ID, domain.OrderPlaced{
			BaseEvent:   domain.BaseEvent{Timestamp: s.now().UTC()},
			OrderID:     created.ID,
			UserID:      created.UserID,
			TotalAmount: created.TotalAmount,
			ItemCount:   len(created.Items),
		})
	})
	if err != nil {
		return nil, mapError(err)
	}
	return created, nil
}

// UpdateOrder applies an admin patch. Cancelling returns every item to stock
// in the same transaction.
func (s *Service) UpdateOrder(ctx context.Context, caller principal.Principal, id int64, patch ports.OrderPatch) (*domain.Order, error) {
	if !caller.IsAdmin() {
		return nil, errAdminOnly
	}
	var updated *domain.Order
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orders.Lock(ctx, id)
		if err != nil {
			return err
		}
		previous := order.Status
		if patch.Status != nil {
			if err := order.TransitionTo(*patch.Status); err != nil {
				return err
			}
		}
		if order.Status == domain.StatusCancelled && previous != domain.StatusCancelled {
			if err := s.restock(ctx, order.Items); err != nil {
				return err
			}
		}
		if patch.ShippingAddress != nil {
			order.ShippingAddress = strings.TrimSpace(*patch.ShippingAddress)
		}
		if patch.TrackingNumber != nil {
			order.TrackingNumber = strings.TrimSpace(*patch.TrackingNumber)
		}
		if patch.ExpectedDeliveryDate != nil {
			d := *patch.ExpectedDeliveryDate
			order.ExpectedDeliveryDate = &d
		}
		updated, err = s.orders.Update(ctx, order)
		if err != nil {
			return err
		}
		return s.append(ctx, domain.AggregateOrder, updated.ID, domain.OrderUpdated{
			BaseEvent:      domain.BaseEvent{Timestamp: s.now().UTC()},
			OrderID:        updated.ID,
			Status:         updated.Status,
			PreviousStatus: previous,
		})
	})
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

// DeleteOrder removes an order with its items and payment. Stock is not returned.
func (s *Service) DeleteOrder(ctx context.Context, caller principal.Principal, id int64) error {
	if !caller.IsAdmin() {
		return errAdminOnly
	}
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.orders.Delete(ctx, id)
	})
}

// reserve takes lines in product order so concurrent orders lock rows alike.
func (s *Service) reserve(ctx context.Context, items []domain.Item) error {
	for _, item := range byProduct(items) {
		if err := s.inventory.Reserve(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) restock(ctx context.Context, items []domain.Item) error {
	for _, item := range byProduct(items) {
		err := s.inventory.Release(ctx, item.ProductID, item.Quantity)
		if err != nil && !errors.Is(err, failure.ErrNotFound) {
			return err
		}
	}
	return nil
}

func byProduct(items []domain.Item) []domain.Item {
	sorted := append([]domain.Item(nil), items...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })
	return sorted
}

func (s *Service) append(ctx context.Context, aggregate string, id int64, event outbox.Named) error {
	if s.events == nil {
		return nil
	}
	e, err := outbox.NewEvent(aggregate, id, event)
	if err != nil {
		return err
	}
	return s.events.Append(ctx, e)
}

var _ ports.Service = (*Service)(nil)
