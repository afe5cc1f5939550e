package application

import (
	"errors"
	"fmt"

	ordersdomain "github.com/Apurer/canteen-api/internal/domains/orders/domain"
	"github.com/Apurer/canteen-api/internal/shared/failure"
)

var (
	errNoCaller  = fmt.Errorf("authentication required: %w", failure.ErrUnauthorized)
	errNotOwner  = fmt.Errorf("cart belongs to another user: %w", failure.ErrForbidden)
	errEmptyCart = fmt.Errorf("add items before checkout: %w", failure.ErrEmptyCart)
	errNoCart    = errors.New("cart id is required")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ordersdomain.ErrNoItems) {
		return errEmptyCart
	}
	if errors.Is(err, ordersdomain.ErrInvalidQuantity) ||
		errors.Is(err, ordersdomain.ErrInvalidItemPrice) ||
		errors.Is(err, ordersdomain.ErrInvalidAmount) ||
		errors.Is(err, ordersdomain.ErrInvalidCurrency) ||
		errors.Is(err, errNoCart) {
		return fmt.Errorf("%w: %w", failure.ErrValidation, err)
	}
	return err
}
