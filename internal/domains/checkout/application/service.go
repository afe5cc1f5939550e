package application

import (
	"context"
	"strings"
	"time"

	"github.com/Apurer/canteen-api/internal/domains/checkout/ports"
	ordersdomain "github.com/Apurer/canteen-api/internal/domains/orders/domain"
	"github.com/Apurer/canteen-api/internal/platform/outbox"
	"github.com/Apurer/canteen-api/internal/shared/principal"
	"github.com/Apurer/canteen-api/internal/shared/tx"
)

// Service is the checkout coordinator. Every step of a checkout runs in one
// transaction: a failure anywhere leaves the cart as it was and no order behind.
type Service struct {
	carts       ports.Carts
	orders      ports.OrderBook
	idempotency ports.IdempotencyStore
	events      outbox.Store
	tx          tx.Transactor
	currency    string
	now         func() time.Time
}

type Option func(*Service)

// WithDefaultCurrency sets the currency of payments created at checkout.
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

func NewService(carts ports.Carts, orders ports.OrderBook, idempotency ports.IdempotencyStore, events outbox.Store, transactor tx.Transactor, opts ...Option) *Service {
	s := &Service{
		carts:       carts,
		orders:      orders,
		idempotency: idempotency,
		events:      events,
		tx:          transactor,
		currency:    ordersdomain.DefaultCurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Checkout turns the cart into a placed order with a pending payment and empties
// the cart. Stock was reserved when items were added and is not touched here.
func (s *Service) Checkout(ctx context.Context, caller principal.Principal, input ports.Input) (*ports.Result, error) {
	if caller.UserID <= 0 {
		return nil, errNoCaller
	}
	if input.CartID <= 0 {
		return nil, mapError(errNoCart)
	}
	var (
		key  string
		hash string
	)
	if k := strings.TrimSpace(input.IdempotencyKey); k != "" && s.idempotency != nil {
		var err error
		if hash, err = Fingerprint(input); err != nil {
			return nil, err
		}
		key = IdempotencyKey(input.CartID, k)
	}

	var result *ports.Result
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		cart, err := s.carts.Lock(ctx, input.CartID)
		if err != nil {
			return err
		}
		if !caller.CanAccess(cart.UserID) {
			return errNotOwner
		}
		if key != "" {
			existing, err := s.idempotency.Get(ctx, key)
			if err != nil {
				return err
			}
			if existing != nil {
				if existing.RequestHash != hash {
					return ports.ErrIdempotencyConflict
				}
				result, err = s.replay(ctx, existing.OrderID)
				return err
			}
		}
		if len(cart.Lines) == 0 {
			return errEmptyCart
		}

		items := make([]ordersdomain.Item, 0, len(cart.Lines))
		for _, line := range cart.Lines {
			items = append(items, ordersdomain.Item{ProductID: line.ProductID, Quantity: line.Quantity, Price: line.Price})
		}
		order, err := ordersdomain.NewOrder(cart.UserID, items, input.PaymentMethod, input.ShippingAddress)
		if err != nil {
			return err
		}
		placed, err := s.orders.CreateOrder(ctx, order)
		if err != nil {
			return err
		}
		payment, err := ordersdomain.NewPendingPayment(placed.ID, placed.TotalAmount, s.currency, placed.PaymentMethod)
		if err != nil {
			return err
		}
		pending, err := s.orders.CreatePayment(ctx, payment)
		if err != nil {
			return err
		}
		if err := s.carts.Empty(ctx, cart.ID); err != nil {
			return err
		}
		if key != "" {
			if _, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{Key: key, RequestHash: hash, OrderID: placed.ID}); err != nil {
				return err
			}
		}
		if err := s.appendPlaced(ctx, placed); err != nil {
			return err
		}
		result = &ports.Result{Order: placed, Payment: pending}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func (s *Service) replay(ctx context.Context, orderID int64) (*ports.Result, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	payment, err := s.orders.GetPaymentByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &ports.Result{Order: order, Payment: payment, Replayed: true}, nil
}

func (s *Service) appendPlaced(ctx context.Context, order *ordersdomain.Order) error {
	if s.events == nil {
		return nil
	}
	event, err := outbox.NewEvent(ordersdomain.AggregateOrder, order.ID, ordersdomain.OrderPlaced{
		BaseEvent:   ordersdomain.BaseEvent{Timestamp: s.now().UTC()},
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Items),
	})
	if err != nil {
		return err
	}
	return s.events.Append(ctx, event)
}

var _ ports.Service = (*Service)(nil)
