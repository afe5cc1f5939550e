package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Apurer/canteen-api/internal/domains/orders/domain"
	"github.com/Apurer/canteen-api/internal/domains/orders/ports"
	"github.com/Apurer/canteen-api/internal/platform/outbox"
	"github.com/Apurer/canteen-api/internal/shared/principal"
	"github.com/Apurer/canteen-api/internal/shared/tx"
)

// PaymentService manages the payment record of each order. Every status
// change is mirrored onto the order in the same transaction.
type PaymentService struct {
	orders   ports.Repository
	payments ports.PaymentRepository
	events   outbox.Store
	tx       tx.Transactor
	currency string
	now      func() time.Time
}

func NewPaymentService(orders ports.Repository, payments ports.PaymentRepository, events outbox.Store, transactor tx.Transactor, defaultCurrency string) *PaymentService {
	if strings.TrimSpace(defaultCurrency) == "" {
		defaultCurrency = domain.DefaultCurrency
	}
	return &PaymentService{
		orders:   orders,
		payments: payments,
		events:   events,
		tx:       transactor,
		currency: defaultCurrency,
		now:      time.Now,
	}
}

// CreatePendingPayment returns the order's existing payment when it matches
// the request; checkout always creates one, so this is mostly a confirmation.
func (s *PaymentService) CreatePendingPayment(ctx context.Context, caller principal.Principal, input ports.PaymentInput) (*domain.Payment, error) {
	if caller.UserID <= 0 {
		return nil, errNoCaller
	}
	var result *domain.Payment
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orders.Lock(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if !caller.CanAccess(order.UserID) {
			return errNotOwner
		}
		if !input.Amount.Equal(order.TotalAmount) {
			return errAmountMismatch
		}
		currency := input.Currency
		if strings.TrimSpace(currency) == "" {
			currency = s.currency
		}
		existing, err := s.payments.GetByOrder(ctx, order.ID)
		switch {
		case err == nil:
			if !existing.Matches(input.Amount, currency, input.PaymentMethod) {
				return ports.ErrPaymentExists
			}
			result = existing
			return nil
		case !errors.Is(err, ports.ErrPaymentNotFound):
			return err
		}
		method := input.PaymentMethod
		if strings.TrimSpace(method) == "" {
			method = order.PaymentMethod
		}
		payment, err := domain.NewPendingPayment(order.ID, input.Amount, currency, method)
		if err != nil {
			return err
		}
		payment.TransactionID = strings.TrimSpace(input.TransactionID)
		result, err = s.payments.Create(ctx, payment)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func (s *PaymentService) GetPaymentByOrder(ctx context.Context, caller principal.Principal, orderID int64) (*domain.Payment, error) {
	if caller.UserID <= 0 {
		return nil, errNoCaller
	}
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(order.UserID) {
		return nil, errNotOwner
	}
	return s.payments.GetByOrder(ctx, orderID)
}

// UpdatePaymentStatus moves the payment and the order's payment_status together.
// The order row is locked before the payment row, matching checkout's lock order.
func (s *PaymentService) UpdatePaymentStatus(ctx context.Context, caller principal.Principal, paymentID int64, status domain.PaymentStatus, transactionID string) (*domain.Payment, error) {
	if caller.UserID <= 0 {
		return nil, errNoCaller
	}
	var result *domain.Payment
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		located, err := s.payments.Get(ctx, paymentID)
		if err != nil {
			return err
		}
		order, err := s.orders.Lock(ctx, located.OrderID)
		if err != nil {
			return err
		}
		if !caller.CanAccess(order.UserID) {
			return errNotOwner
		}
		payment, err := s.payments.Lock(ctx, paymentID)
		if err != nil {
			return err
		}
		from := payment.Status
		if err := payment.TransitionTo(status); err != nil {
			return err
		}
		if id := strings.TrimSpace(transactionID); id != "" {
			payment.TransactionID = id
		}
		result, err = s.payments.Update(ctx, payment)
		if err != nil {
			return err
		}
		order.PaymentStatus = payment.Status
		if _, err := s.orders.Update(ctx, order); err != nil {
			return err
		}
		if from == payment.Status {
			return nil
		}
		event, err := outbox.NewEvent(domain.AggregatePayment, payment.ID, domain.PaymentStatusChanged{
			BaseEvent:  domain.BaseEvent{Timestamp: s.now().UTC()},
			PaymentID:  payment.ID,
			OrderID:    order.ID,
			FromStatus: from,
			ToStatus:   payment.Status,
		})
		if err != nil {
			return err
		}
		if s.events == nil {
			return nil
		}
		return s.events.Append(ctx, event)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

var _ ports.PaymentService = (*PaymentService)(nil)
