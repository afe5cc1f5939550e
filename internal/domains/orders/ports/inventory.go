package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is the catalog view needed to price manual orders.
type Product struct {
	ID        int64
	Name      string
	UnitPrice decimal.Decimal
}

// Inventory prices products, takes stock for manual orders and takes back
// stock of cancelled ones.
type Inventory interface {
	Lookup(ctx context.Context, productID int64) (Product, error)
	Reserve(ctx context.Context, productID int64, quantity int) error
	Release(ctx context.Context, productID int64, quantity int) error
}
