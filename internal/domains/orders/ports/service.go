package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/canteen-api/internal/domains/orders/domain"
	"github.com/Apurer/canteen-api/internal/shared/principal"
)

// ItemInput is one line of a manually created order.
type ItemInput struct {
	ProductID int64
	Quantity  int
}

// CreateOrderInput describes an admin-entered order.
type CreateOrderInput struct {
	UserID          int64
	Items           []ItemInput
	PaymentMethod   string
	ShippingAddress string
}

// OrderPatch carries the fields an admin may change. Nil fields are left as is.
type OrderPatch struct {
	Status               *domain.Status
	ShippingAddress      *string
	TrackingNumber       *string
	ExpectedDeliveryDate *time.Time
}

// Service exposes order query and management use cases.
type Service interface {
	ListOrders(ctx context.Context, caller principal.Principal) ([]*domain.Order, error)
	GetOrder(ctx context.Context, caller principal.Principal, id int64) (*domain.Order, error)
	CreateOrder(ctx context.Context, caller principal.Principal, input CreateOrderInput) (*domain.Order, error)
	UpdateOrder(ctx context.Context, caller principal.Principal, id int64, patch OrderPatch) (*domain.Order, error)
	DeleteOrder(ctx context.Context, caller principal.Principal, id int64) error
}

// PaymentInput describes a payment creation request.
type PaymentInput struct {
	OrderID       int64
	Amount        decimal.Decimal
	Currency      string
	PaymentMethod string
	TransactionID string
}

// PaymentService exposes payment record use cases.
type PaymentService interface {
	CreatePendingPayment(ctx context.Context, caller principal.Principal, input PaymentInput) (*domain.Payment, error)
	GetPaymentByOrder(ctx context.Context, caller principal.Principal, orderID int64) (*domain.Payment, error)
	UpdatePaymentStatus(ctx context.Context, caller principal.Principal, paymentID int64, status domain.PaymentStatus, transactionID string) (*domain.Payment, error)
}
