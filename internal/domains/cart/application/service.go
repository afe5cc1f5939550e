package application

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/Apurer/canteen-api/internal/domains/cart/domain"
	"github.com/Apurer/canteen-api/internal/domains/cart/ports"
	"github.com/Apurer/canteen-api/internal/shared/failure"
	"github.com/Apurer/canteen-api/internal/shared/principal"
	"github.com/Apurer/canteen-api/internal/shared/tx"
)

const idleBatchSize = 100

// Service keeps cart lines and reserved stock in step. Every mutation runs in
// one transaction with the cart row locked, so a line exists exactly when its
// quantity has been taken out of stock.
type Service struct {
	repo      ports.Repository
	inventory ports.Inventory
	tx        tx.Transactor
	now       func() time.Time
}

func NewService(repo ports.Repository, inventory ports.Inventory, transactor tx.Transactor) *Service {
	return &Service{repo: repo, inventory: inventory, tx: transactor, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (s *Service) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) GetCart(ctx context.Context, caller principal.Principal) (*domain.Cart, error) {
	if caller.UserID <= 0 {
		return nil, errNoCaller
	}
	var cart *domain.Cart
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		cart, err = s.repo.GetOrCreate(ctx, caller.UserID)
		return err
	})
	return cart, err
}

func (s *Service) AddItem(ctx context.Context, caller principal.Principal, productID int64, quantity int) (*domain.Cart, error) {
	if caller.UserID <= 0 {
		return nil, errNoCaller
	}
	if err := domain.ValidateQuantity(quantity); err != nil {
		return nil, mapError(err)
	}
	return s.mutate(ctx, caller.UserID, func(ctx context.Context, cart *domain.Cart) error {
		product, err := s.inventory.Lookup(ctx, productID)
		if err != nil {
			return err
		}
		if err := s.inventory.Reserve(ctx, productID, quantity); err != nil {
			return err
		}
		return s.repo.UpsertItem(ctx, cart.ID, productID, quantity, product.UnitPrice)
	})
}

func (s *Service) UpdateItemQuantity(ctx context.Context, caller principal.Principal, cartItemID int64, quantity int) (*domain.Cart, error) {
	if caller.UserID <= 0 {
		return nil, errNoCaller
	}
	if err := domain.ValidateQuantity(quantity); err != nil {
		return nil, mapError(err)
	}
	return s.mutate(ctx, caller.UserID, func(ctx context.Context, cart *domain.Cart) error {
		item, ok := cart.ItemByID(cartItemID)
		if !ok {
			return ports.ErrItemNotFound
		}
		delta := quantity - item.Quantity
		switch {
		case delta > 0:
			if err := s.inventory.Reserve(ctx, item.ProductID, delta); err != nil {
				return err
			}
		case delta < 0:
			if err := s.release(ctx, item.ProductID, -delta); err != nil {
				return err
			}
		default:
			return nil
		}
		return s.repo.SetItemQuantity(ctx, item.ID, quantity)
	})
}

func (s *Service) RemoveItem(ctx context.Context, caller principal.Principal, productID int64) (*domain.Cart, error) {
	if caller.UserID <= 0 {
		return nil, errNoCaller
	}
	return s.mutate(ctx, caller.UserID, func(ctx context.Context, cart *domain.Cart) error {
		item, ok := cart.ItemByProduct(productID)
		if !ok {
			return ports.ErrItemNotFound
		}
		if err := s.release(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
		return s.repo.DeleteItem(ctx, item.ID)
	})
}

func (s *Service) ClearCart(ctx context.Context, caller principal.Principal) (*domain.Cart, error) {
	if caller.UserID <= 0 {
		return nil, errNoCaller
	}
	return s.mutate(ctx, caller.UserID, s.clear)
}

func (s *Service) ReleaseAbandoned(ctx context.Context, idleFor time.Duration) (int, error) {
	if idleFor <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-idleFor)
	released := 0
	for {
		idle, err := s.repo.ListIdle(ctx, cutoff, idleBatchSize)
		if err != nil {
			return released, err
		}
		progressed := false
		for _, candidate := range idle {
			cleared := false
			err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
				cart, err := s.repo.Lock(ctx, candidate.ID)
				if err != nil {
					return err
				}
				// touched after it was listed
				if !cart.UpdatedAt.Before(cutoff) || cart.IsEmpty() {
					return nil
				}
				if err := s.clear(ctx, cart); err != nil {
					return err
				}
				cleared = true
				return s.repo.Touch(ctx, cart.ID)
			})
			if err != nil {
				return released, err
			}
			if cleared {
				released++
				progressed = true
			}
		}
		if len(idle) < idleBatchSize || !progressed {
			return released, nil
		}
	}
}

// mutate locks the caller's cart, applies fn, bumps updated_at, and returns the fresh cart.
func (s *Service) mutate(ctx context.Context, userID int64, fn func(ctx context.Context, cart *domain.Cart) error) (*domain.Cart, error) {
	var result *domain.Cart
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		cart, err := s.repo.GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}
		if err := fn(ctx, cart); err != nil {
			return err
		}
		if err := s.repo.Touch(ctx, cart.ID); err != nil {
			return err
		}
		result, err = s.repo.Lock(ctx, cart.ID)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// clear releases every line in product order, for a stable lock order across
// concurrent clears, then deletes the lines.
func (s *Service) clear(ctx context.Context, cart *domain.Cart) error {
	items := append([]domain.Item(nil), cart.Items...)
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	for _, item := range items {
		if err := s.release(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	return s.repo.ClearItems(ctx, cart.ID)
}

// release returns stock; products deleted since the reservation are skipped.
func (s *Service) release(ctx context.Context, productID int64, quantity int) error {
	err := s.inventory.Release(ctx, productID, quantity)
	if errors.Is(err, failure.ErrNotFound) {
		return nil
	}
	return err
}

var _ ports.Service = (*Service)(nil)
