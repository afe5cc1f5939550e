package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/canteen-api/internal/domains/cart/domain"
	"github.com/Apurer/canteen-api/internal/shared/failure"
)

var errNoCaller = fmt.Errorf("cart operations need an authenticated user: %w", failure.ErrUnauthorized)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidQuantity) {
		return fmt.Errorf("%w: %w", failure.ErrValidation, err)
	}
	return err
}
