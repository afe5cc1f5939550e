package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Apurer/canteen-api/internal/shared/failure"
	"github.com/Apurer/canteen-api/internal/shared/tx"
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"

	defaultMaxAttempts = 3
)

type txKey struct{}

// Transactor runs units of work in a single PostgreSQL transaction and
// retries serialization failures and deadlocks.
type Transactor struct {
	db          *gorm.DB
	maxAttempts int
}

// NewTransactor builds a Transactor over db.
func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db, maxAttempts: defaultMaxAttempts}
}

// WithinTransaction implements tx.Transactor. Nested calls reuse the outer
// transaction and are not retried on their own.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if t == nil || t.db == nil {
		return fmt.Errorf("postgres transactor not initialized")
	}
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	var err error
	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		var txCtx context.Context
		err = t.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
			txCtx = tx.MarkActive(context.WithValue(ctx, txKey{}, gtx))
			return fn(txCtx)
		})
		if err == nil {
			tx.Committed(ctx, txCtx)
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if ctx.Err() != nil {
			break
		}
	}
	return fmt.Errorf("%w: %w", failure.ErrConflictRetry, err)
}

// Conn returns the transaction bound to ctx, or db scoped to ctx otherwise.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if gtx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return gtx
	}
	return db.WithContext(ctx)
}

// IsRetryable reports whether err is a serialization failure or deadlock.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected
}
