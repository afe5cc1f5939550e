package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/canteen-api/internal/domains/users/domain"
	"github.com/Apurer/canteen-api/internal/shared/failure"
)

var (
	errInvalidCredentials = fmt.Errorf("invalid email or password: %w", failure.ErrUnauthorized)
	errInvalidToken       = fmt.Errorf("token is invalid or revoked: %w", failure.ErrUnauthorized)
	errInvalidSecret      = fmt.Errorf("invalid admin secret key: %w", failure.ErrForbidden)
	errAdminOnly          = fmt.Errorf("listing users requires the admin role: %w", failure.ErrForbidden)
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrInvalidEmail) ||
		errors.Is(err, domain.ErrEmptyPassword) ||
		errors.Is(err, domain.ErrWeakPassword) {
		return fmt.Errorf("%w: %w", failure.ErrValidation, err)
	}
	return err
}
