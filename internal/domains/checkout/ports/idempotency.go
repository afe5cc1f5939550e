package ports

import (
	"context"
	"fmt"
	"time"

	"github.com/Apurer/canteen-api/internal/shared/failure"
)

// ErrIdempotencyConflict signals that a key was reused with a different request payload.
var ErrIdempotencyConflict = fmt.Errorf("idempotency key reused with a different request: %w", failure.ErrConflict)

// IdempotencyRecord captures the outcome of a checkout performed under a key.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	OrderID     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IdempotencyStore persists idempotency keys for checkout.
type IdempotencyStore interface {
	// Get returns the record for key, or nil when absent.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Save stores the record. An existing record with the same hash and order
	// is returned unchanged; any other existing record yields ErrIdempotencyConflict.
	Save(ctx context.Context, record IdempotencyRecord) (*IdempotencyRecord, error)
}
