package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus tracks settlement of an order.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

const DefaultCurrency = "INR"

var (
	ErrInvalidPaymentStatus     = errors.New("payment status is invalid")
	ErrInvalidPaymentTransition = errors.New("payment status transition is not allowed")
	ErrInvalidAmount            = errors.New("payment amount must be positive")
	ErrInvalidCurrency          = errors.New("currency must be a three letter code")
)

// Payment is the single settlement record of an order.
type Payment struct {
	ID            int64
	OrderID       int64
	Amount        decimal.Decimal
	Currency      string
	PaymentMethod string
	TransactionID string
	Status        PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewPendingPayment builds an unsettled payment for an order.
func NewPendingPayment(orderID int64, amount decimal.Decimal, currency, method string) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	if len(currency) != 3 {
		return nil, ErrInvalidCurrency
	}
	if strings.TrimSpace(method) == "" {
		method = DefaultPaymentMethod
	}
	return &Payment{
		OrderID:       orderID,
		Amount:        amount,
		Currency:      currency,
		PaymentMethod: strings.TrimSpace(method),
		Status:        PaymentPending,
	}, nil
}

// TransitionTo applies a settlement change. Repeating the current status is a no-op.
func (p *Payment) TransitionTo(next PaymentStatus) error {
	if !next.Valid() {
		return ErrInvalidPaymentStatus
	}
	if next == p.Status {
		return nil
	}
	allowed := false
	switch p.Status {
	case PaymentPending:
		allowed = next == PaymentPaid || next == PaymentFailed
	case PaymentFailed:
		allowed = next == PaymentPending || next == PaymentPaid
	case PaymentPaid:
		allowed = next == PaymentRefunded
	}
	if !allowed {
		return ErrInvalidPaymentTransition
	}
	p.Status = next
	return nil
}

// Matches reports whether an existing payment satisfies a create request.
func (p *Payment) Matches(amount decimal.Decimal, currency, method string) bool {
	if !p.Amount.Equal(amount) {
		return false
	}
	if c := strings.ToUpper(strings.TrimSpace(currency)); c != "" && c != p.Currency {
		return false
	}
	if m := strings.TrimSpace(method); m != "" && m != p.PaymentMethod {
		return false
	}
	return true
}

// Valid reports whether the status is known.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	default:
		return false
	}
}
