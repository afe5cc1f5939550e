package ports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/canteen-api/internal/domains/cart/domain"
	"github.com/Apurer/canteen-api/internal/shared/failure"
)

var (
	ErrNotFound     = fmt.Errorf("cart %w", failure.ErrNotFound)
	ErrItemNotFound = fmt.Errorf("cart item %w", failure.ErrNotFound)
)

// Repository persists carts and their lines. Methods that lock take the row
// lock only when the context carries a transaction.
type Repository interface {
	// GetOrCreate returns the user's cart with its items, inserting it first when absent,
	// and locks the cart row.
	GetOrCreate(ctx context.Context, userID int64) (*domain.Cart, error)
	// Lock loads a cart with its items and locks the cart row.
	Lock(ctx context.Context, cartID int64) (*domain.Cart, error)
	// UpsertItem adds quantity to the (cart, product) line, creating it when absent,
	// and refreshes the price snapshot.
	UpsertItem(ctx context.Context, cartID, productID int64, quantity int, price decimal.Decimal) error
	SetItemQuantity(ctx context.Context, itemID int64, quantity int) error
	DeleteItem(ctx context.Context, itemID int64) error
	ClearItems(ctx context.Context, cartID int64) error
	// Touch bumps the cart's updated_at, which drives abandoned-cart expiry.
	Touch(ctx context.Context, cartID int64) error
	// ListIdle returns non-empty carts untouched since cutoff, without items.
	ListIdle(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Cart, error)
}
