package ports

import (
	"context"

	ordersdomain "github.com/Apurer/canteen-api/internal/domains/orders/domain"
	"github.com/Apurer/canteen-api/internal/shared/principal"
)

// Input describes a checkout request.
type Input struct {
	CartID          int64  `json:"cart_id"`
	PaymentMethod   string `json:"payment_method"`
	ShippingAddress string `json:"shipping_address"`
	IdempotencyKey  string `json:"idempotency_key"`
}

// Result is the order produced by a checkout with its pending payment.
type Result struct {
	Order    *ordersdomain.Order   `json:"order"`
	Payment  *ordersdomain.Payment `json:"payment"`
	Replayed bool                  `json:"replayed"`
}

// Service converts a cart into an order atomically.
type Service interface {
	Checkout(ctx context.Context, caller principal.Principal, input Input) (*Result, error)
}

// WorkflowOrchestrator runs checkout either durably or inline.
type WorkflowOrchestrator interface {
	PlaceOrder(ctx context.Context, caller principal.Principal, input Input) (*Result, error)
}
