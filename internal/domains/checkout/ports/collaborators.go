package ports

import (
	"context"

	"github.com/shopspring/decimal"

	ordersdomain "github.com/Apurer/canteen-api/internal/domains/orders/domain"
)

// Line is one cart line as checkout sees it.
type Line struct {
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
}

// Cart is the locked cart being checked out.
type Cart struct {
	ID     int64
	UserID int64
	Lines  []Line
}

// Carts gives checkout row-locked access to a cart.
type Carts interface {
	// Lock loads the cart with its lines and holds its row lock until the transaction ends.
	Lock(ctx context.Context, cartID int64) (*Cart, error)
	// Empty deletes every line of the cart without touching stock.
	Empty(ctx context.Context, cartID int64) error
}

// OrderBook records placed orders and their payments.
type OrderBook interface {
	CreateOrder(ctx context.Context, order *ordersdomain.Order) (*ordersdomain.Order, error)
	CreatePayment(ctx context.Context, payment *ordersdomain.Payment) (*ordersdomain.Payment, error)
	GetOrder(ctx context.Context, id int64) (*ordersdomain.Order, error)
	GetPaymentByOrder(ctx context.Context, orderID int64) (*ordersdomain.Payment, error)
}
