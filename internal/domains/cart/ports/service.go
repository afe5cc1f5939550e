package ports

import (
	"context"
	"time"

	"github.com/Apurer/canteen-api/internal/domains/cart/domain"
	"github.com/Apurer/canteen-api/internal/shared/principal"
)

// Service exposes cart use cases. The caller's own cart is always the target.
type Service interface {
	GetCart(ctx context.Context, caller principal.Principal) (*domain.Cart, error)
	AddItem(ctx context.Context, caller principal.Principal, productID int64, quantity int) (*domain.Cart, error)
	UpdateItemQuantity(ctx context.Context, caller principal.Principal, cartItemID int64, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, caller principal.Principal, productID int64) (*domain.Cart, error)
	ClearCart(ctx context.Context, caller principal.Principal) (*domain.Cart, error)
	// ReleaseAbandoned empties carts idle for longer than idleFor and returns their stock.
	ReleaseAbandoned(ctx context.Context, idleFor time.Duration) (int, error)
}
