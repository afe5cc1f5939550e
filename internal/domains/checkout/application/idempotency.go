package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	ordersdomain "github.com/Apurer/canteen-api/internal/domains/orders/domain"
	"github.com/Apurer/canteen-api/internal/domains/checkout/ports"
)

type normalizedCheckout struct {
	CartID          int64  `json:"cart_id"`
	PaymentMethod   string `json:"payment_method"`
	ShippingAddress string `json:"shipping_address"`
}

// Fingerprint builds a deterministic hash of the checkout request, excluding the key.
// Blank method and address hash as their defaults.
func Fingerprint(input ports.Input) (string, error) {
	normalized := normalizedCheckout{
		CartID:          input.CartID,
		PaymentMethod:   strings.TrimSpace(input.PaymentMethod),
		ShippingAddress: strings.TrimSpace(input.ShippingAddress),
	}
	if normalized.PaymentMethod == "" {
		normalized.PaymentMethod = ordersdomain.DefaultPaymentMethod
	}
	if normalized.ShippingAddress == "" {
		normalized.ShippingAddress = ordersdomain.DefaultShippingAddress
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// IdempotencyKey scopes a client key to the cart it was used with.
func IdempotencyKey(cartID int64, key string) string {
	return fmt.Sprintf("checkout:%d:%s", cartID, strings.TrimSpace(key))
}
