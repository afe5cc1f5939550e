package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/canteen-api/internal/domains/orders/domain"
	"github.com/Apurer/canteen-api/internal/shared/failure"
)

var (
	errAdminOnly      = fmt.Errorf("managing orders requires the admin role: %w", failure.ErrForbidden)
	errNotOwner       = fmt.Errorf("order belongs to another user: %w", failure.ErrForbidden)
	errNoCaller       = fmt.Errorf("authentication required: %w", failure.ErrUnauthorized)
	errAmountMismatch = errors.New("payment amount must equal the order total")
	errMissingUser    = errors.New("order user id is required")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNoItems) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidItemPrice) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrInvalidPaymentStatus) ||
		errors.Is(err, domain.ErrInvalidPaymentTransition) ||
		errors.Is(err, domain.ErrInvalidAmount) ||
		errors.Is(err, domain.ErrInvalidCurrency) ||
		errors.Is(err, errAmountMismatch) ||
		errors.Is(err, errMissingUser) {
		return fmt.Errorf("%w: %w", failure.ErrValidation, err)
	}
	return err
}
