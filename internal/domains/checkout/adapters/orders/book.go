// Package orders adapts the order repositories to the checkout order book port.
package orders

import (
	"context"

	"github.com/Apurer/canteen-api/internal/domains/checkout/ports"
	ordersdomain "github.com/Apurer/canteen-api/internal/domains/orders/domain"
	ordersports "github.com/Apurer/canteen-api/internal/domains/orders/ports"
)

var _ ports.OrderBook = (*Book)(nil)

type Book struct {
	orders   ordersports.Repository
	payments ordersports.PaymentRepository
}

func NewBook(orders ordersports.Repository, payments ordersports.PaymentRepository) *Book {
	return &Book{orders: orders, payments: payments}
}

func (b *Book) CreateOrder(ctx context.Context, order *ordersdomain.Order) (*ordersdomain.Order, error) {
	return b.orders.Create(ctx, order)
}

func (b *Book) CreatePayment(ctx context.Context, payment *ordersdomain.Payment) (*ordersdomain.Payment, error) {
	return b.payments.Create(ctx, payment)
}

func (b *Book) GetOrder(ctx context.Context, id int64) (*ordersdomain.Order, error) {
	return b.orders.Get(ctx, id)
}

func (b *Book) GetPaymentByOrder(ctx context.Context, orderID int64) (*ordersdomain.Payment, error) {
	return b.payments.GetByOrder(ctx, orderID)
}
