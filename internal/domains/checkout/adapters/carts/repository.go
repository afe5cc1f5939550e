// Package carts adapts the cart repository to the checkout cart port.
package carts

import (
	"context"

	cartports "github.com/Apurer/canteen-api/internal/domains/cart/ports"
	"github.com/Apurer/canteen-api/internal/domains/checkout/ports"
)

var _ ports.Carts = (*Repository)(nil)

type Repository struct {
	carts cartports.Repository
}

func NewRepository(carts cartports.Repository) *Repository {
	return &Repository{carts: carts}
}

func (r *Repository) Lock(ctx context.Context, cartID int64) (*ports.Cart, error) {
	cart, err := r.carts.Lock(ctx, cartID)
	if err != nil {
		return nil, err
	}
	out := &ports.Cart{ID: cart.ID, UserID: cart.UserID, Lines: make([]ports.Line, 0, len(cart.Items))}
	for _, item := range cart.Items {
		out.Lines = append(out.Lines, ports.Line{ProductID: item.ProductID, Quantity: item.Quantity, Price: item.Price})
	}
	return out, nil
}

// Empty removes the lines and bumps the cart so it is not treated as abandoned.
func (r *Repository) Empty(ctx context.Context, cartID int64) error {
	if err := r.carts.ClearItems(ctx, cartID); err != nil {
		return err
	}
	return r.carts.Touch(ctx, cartID)
}
