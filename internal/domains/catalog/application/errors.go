package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/canteen-api/internal/domains/catalog/domain"
	"github.com/Apurer/canteen-api/internal/shared/failure"
)

var errAdminOnly = fmt.Errorf("managing the menu requires the admin role: %w", failure.ErrForbidden)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidName) ||
		errors.Is(err, domain.ErrInvalidPrice) ||
		errors.Is(err, domain.ErrInvalidDiscount) ||
		errors.Is(err, domain.ErrNegativeStock) {
		return fmt.Errorf("%w: %w", failure.ErrValidation, err)
	}
	return err
}
