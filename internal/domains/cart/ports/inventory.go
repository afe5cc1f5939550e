package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is the catalog view the cart needs.
type Product struct {
	ID        int64
	Name      string
	UnitPrice decimal.Decimal
}

// Inventory reserves and releases catalog stock on behalf of cart lines.
type Inventory interface {
	Lookup(ctx context.Context, productID int64) (Product, error)
	Reserve(ctx context.Context, productID int64, quantity int) error
	Release(ctx context.Context, productID int64, quantity int) error
}
