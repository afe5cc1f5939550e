package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp time.Time `json:"occurred_at"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// OrderPlaced is raised when checkout or an admin creates an order.
type OrderPlaced struct {
	BaseEvent
	OrderID     int64           `json:"order_id"`
	UserID      int64           `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
}

func (e OrderPlaced) EventName() string { return "order.placed" }

// OrderUpdated is raised when an admin changes fulfilment details.
type OrderUpdated struct {
	BaseEvent
	OrderID        int64  `json:"order_id"`
	Status         Status `json:"status"`
	PreviousStatus Status `json:"previous_status"`
}

func (e OrderUpdated) EventName() string { return "order.updated" }

// PaymentStatusChanged is raised whenever settlement state moves.
type PaymentStatusChanged struct {
	BaseEvent
	PaymentID  int64         `json:"payment_id"`
	OrderID    int64         `json:"order_id"`
	FromStatus PaymentStatus `json:"from_status"`
	ToStatus   PaymentStatus `json:"to_status"`
}

func (e PaymentStatusChanged) EventName() string { return "payment.status_changed" }

const (
	AggregateOrder   = "order"
	AggregatePayment = "payment"
)
