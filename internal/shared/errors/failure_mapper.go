package errors

import (
	"errors"

	"github.com/Apurer/canteen-api/internal/shared/failure"
)

// FailureMapper translates the shared failure kinds into Problem Details.
func FailureMapper(err error) (ProblemDetail, bool) {
	if err == nil {
		return ProblemDetail{}, false
	}
	detail := err.Error()
	switch {
	case errors.Is(err, failure.ErrUnauthorized):
		return ErrUnauthorized.WithDetail(detail), true
	case errors.Is(err, failure.ErrForbidden):
		return ErrForbidden.WithDetail(detail), true
	case errors.Is(err, failure.ErrNotFound):
		return ErrNotFound.WithDetail(detail), true
	case errors.Is(err, failure.ErrEmptyCart):
		return ErrEmptyCart.WithDetail(detail), true
	case errors.Is(err, failure.ErrValidation):
		return ErrValidation.WithDetail(detail), true
	case errors.Is(err, failure.ErrInsufficientStock):
		return ErrInsufficientStock.WithDetail(detail), true
	case errors.Is(err, failure.ErrConflictRetry):
		return ErrConflictRetry.WithDetail(detail).WithExtension("retryable", true), true
	case errors.Is(err, failure.ErrConflict):
		return ErrConflict.WithDetail(detail), true
	}
	return ProblemDetail{}, false
}

// DomainResponder maps shared failure kinds before falling back to 500.
var DomainResponder = NewChainedResponder("", FailureMapper)
