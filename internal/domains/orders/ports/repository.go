package ports

import (
	"context"
	"fmt"

	"github.com/Apurer/canteen-api/internal/domains/orders/domain"
	"github.com/Apurer/canteen-api/internal/shared/failure"
)

var (
	ErrNotFound        = fmt.Errorf("order %w", failure.ErrNotFound)
	ErrPaymentNotFound = fmt.Errorf("payment %w", failure.ErrNotFound)
	// ErrPaymentExists is returned when an order already has its payment row.
	ErrPaymentExists = fmt.Errorf("order already has a payment: %w", failure.ErrConflict)
)

// ListFilter narrows order listings. A nil UserID lists every order.
type ListFilter struct {
	UserID *int64
}

// Repository persists orders with their items.
type Repository interface {
	// Create inserts the order and its items, assigning identifiers.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	Get(ctx context.Context, id int64) (*domain.Order, error)
	// Lock loads the order with items and locks its row inside a transaction.
	Lock(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.Order, error)
	// Update writes the mutable columns: status, payment status, address, tracking, delivery date.
	Update(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// Delete removes the order, its items and its payment.
	Delete(ctx context.Context, id int64) error
}

// PaymentRepository persists the 1:1 payment of each order.
type PaymentRepository interface {
	// Create inserts a payment; ErrPaymentExists when the order already has one.
	Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
	Get(ctx context.Context, id int64) (*domain.Payment, error)
	GetByOrder(ctx context.Context, orderID int64) (*domain.Payment, error)
	// Lock loads a payment by id and locks its row inside a transaction.
	Lock(ctx context.Context, id int64) (*domain.Payment, error)
	Update(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
}
