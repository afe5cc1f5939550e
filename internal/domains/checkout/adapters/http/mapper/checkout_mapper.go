package mapper

import (
	"github.com/shopspring/decimal"

	"github.com/Apurer/canteen-api/internal/domains/checkout/ports"
	ordersmapper "github.com/Apurer/canteen-api/internal/domains/orders/adapters/http/mapper"
)

// CheckoutRequest is the POST /cart/checkout body.
type CheckoutRequest struct {
	CartID          int64  `json:"cart_id"`
	PaymentMethod   string `json:"payment_method"`
	ShippingAddress string `json:"shipping_address"`
	IdempotencyKey  string `json:"idempotency_key"`
}

// CheckoutResponse keeps the original summary fields next to the full order.
type CheckoutResponse struct {
	Message     string                `json:"message"`
	OrderID     int64                 `json:"order_id"`
	TotalAmount decimal.Decimal       `json:"total_amount"`
	Replayed    bool                  `json:"replayed"`
	Order       ordersmapper.Order    `json:"order"`
	Payment     *ordersmapper.Payment `json:"payment"`
}

// ToInput prefers the Idempotency-Key header over the body field.
func ToInput(req CheckoutRequest, headerKey string) ports.Input {
	key := req.IdempotencyKey
	if headerKey != "" {
		key = headerKey
	}
	return ports.Input{
		CartID:          req.CartID,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		IdempotencyKey:  key,
	}
}

func FromResult(result *ports.Result) CheckoutResponse {
	resp := CheckoutResponse{
		Message:  "Order placed successfully",
		Replayed: result.Replayed,
		Order:    ordersmapper.FromDomainOrder(result.Order),
		Payment:  ordersmapper.FromDomainPayment(result.Payment),
	}
	if result.Order != nil {
		resp.OrderID = result.Order.ID
		resp.TotalAmount = result.Order.TotalAmount
	}
	return resp
}
