// Package failure defines the error kinds shared by every bounded context.
// Domain packages wrap these kinds so the HTTP boundary can map them to
// status codes without knowing each domain's sentinels.
package failure

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrValidation        = errors.New("validation failed")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrConflict          = errors.New("conflict")
	// ErrConflictRetry signals a concurrent mutation was detected; the caller may retry.
	ErrConflictRetry = errors.New("concurrent modification detected, retry")
)

var kinds = []error{
	ErrNotFound,
	ErrForbidden,
	ErrUnauthorized,
	ErrValidation,
	ErrInsufficientStock,
	ErrEmptyCart,
	ErrConflictRetry,
	ErrConflict,
}

// Kind returns the shared kind wrapped by err, or nil when err carries none.
func Kind(err error) error {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Parse returns the kind whose message equals name, or nil. It restores kinds
// that crossed a process boundary as plain strings.
func Parse(name string) error {
	for _, kind := range kinds {
		if kind.Error() == name {
			return kind
		}
	}
	return nil
}
