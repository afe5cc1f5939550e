// Package inventory adapts the catalog service to the cart's stock port.
package inventory

import (
	"context"

	catalogdomain "github.com/Apurer/canteen-api/internal/domains/catalog/domain"
	"github.com/Apurer/canteen-api/internal/domains/cart/ports"
)

type stockKeeper interface {
	GetProduct(ctx context.Context, id int64) (*catalogdomain.Product, error)
	AdjustStock(ctx context.Context, id int64, delta int) (*catalogdomain.Product, error)
}

var _ ports.Inventory = (*Catalog)(nil)

// Catalog reserves stock by adjusting the catalog counter.
type Catalog struct {
	catalog stockKeeper
}

func NewCatalog(catalog stockKeeper) *Catalog {
	return &Catalog{catalog: catalog}
}

func (c *Catalog) Lookup(ctx context.Context, productID int64) (ports.Product, error) {
	product, err := c.catalog.GetProduct(ctx, productID)
	if err != nil {
		return ports.Product{}, err
	}
	return ports.Product{ID: product.ID, Name: product.Name, UnitPrice: product.UnitPrice()}, nil
}

func (c *Catalog) Reserve(ctx context.Context, productID int64, quantity int) error {
	_, err := c.catalog.AdjustStock(ctx, productID, -quantity)
	return err
}

func (c *Catalog) Release(ctx context.Context, productID int64, quantity int) error {
	_, err := c.catalog.AdjustStock(ctx, productID, quantity)
	return err
}
