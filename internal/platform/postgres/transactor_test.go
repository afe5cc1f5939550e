package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsRetryable(fmt.Errorf("update stock: %w", &pgconn.PgError{Code: "40P01"})))
	assert.False(t, IsRetryable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsRetryable(errors.New("connection refused")))
	assert.False(t, IsRetryable(nil))
}

func TestConn_PrefersTransactionFromContext(t *testing.T) {
	base := &gorm.DB{Config: &gorm.Config{}}
	inTx := &gorm.DB{Config: &gorm.Config{}}

	ctx := context.WithValue(context.Background(), txKey{}, inTx)

	assert.Same(t, inTx, Conn(ctx, base))
}

func TestTransactor_RequiresDB(t *testing.T) {
	var tr *Transactor
	err := tr.WithinTransaction(context.Background(), func(context.Context) error { return nil })
	require.Error(t, err)
}
