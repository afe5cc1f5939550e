package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates order fulfilment progression.
type Status string

const (
	StatusPlaced    Status = "placed"
	StatusProcessed Status = "processed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

const (
	DefaultPaymentMethod   = "cash-on-pickup"
	DefaultShippingAddress = "Canteen pickup counter"
)

var (
	ErrNoItems           = errors.New("order needs at least one item")
	ErrInvalidQuantity   = errors.New("item quantity must be greater than zero")
	ErrInvalidItemPrice  = errors.New("item price cannot be negative")
	ErrInvalidStatus     = errors.New("order status is invalid")
	ErrInvalidTransition = errors.New("order status transition is not allowed")
)

// Order is a placed purchase. Its item set is fixed at creation.
type Order struct {
	ID                   int64
	UserID               int64
	TotalAmount          decimal.Decimal
	Status               Status
	PaymentMethod        string
	PaymentStatus        PaymentStatus
	ShippingAddress      string
	TrackingNumber       string
	ExpectedDeliveryDate *time.Time
	Items                []Item
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Item is an order line with the unit price charged.
type Item struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
}

// NewOrder builds a placed, unpaid order and derives its total from items.
func NewOrder(userID int64, items []Item, paymentMethod, shippingAddress string) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if item.Price.IsNegative() {
			return nil, ErrInvalidItemPrice
		}
	}
	if strings.TrimSpace(paymentMethod) == "" {
		paymentMethod = DefaultPaymentMethod
	}
	if strings.TrimSpace(shippingAddress) == "" {
		shippingAddress = DefaultShippingAddress
	}
	return &Order{
		UserID:          userID,
		TotalAmount:     Total(items),
		Status:          StatusPlaced,
		PaymentMethod:   strings.TrimSpace(paymentMethod),
		PaymentStatus:   PaymentPending,
		ShippingAddress: strings.TrimSpace(shippingAddress),
		Items:           append([]Item(nil), items...),
	}, nil
}

// Total sums price times quantity exactly.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// TransitionTo moves the order along its lifecycle. Repeating the current status is a no-op.
func (o *Order) TransitionTo(next Status) error {
	if !next.Valid() {
		return ErrInvalidStatus
	}
	if next == o.Status {
		return nil
	}
	allowed := false
	switch o.Status {
	case StatusPlaced:
		allowed = next == StatusProcessed || next == StatusCancelled
	case StatusProcessed:
		allowed = next == StatusShipped || next == StatusCancelled
	case StatusShipped:
		allowed = next == StatusDelivered
	}
	if !allowed {
		return ErrInvalidTransition
	}
	o.Status = next
	return nil
}

// Valid reports whether the status is known.
func (s Status) Valid() bool {
	switch s {
	case StatusPlaced, StatusProcessed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]Item(nil), o.Items...)
	if o.ExpectedDeliveryDate != nil {
		d := *o.ExpectedDeliveryDate
		clone.ExpectedDeliveryDate = &d
	}
	return &clone
}
