package memdb

import (
	"context"
	"errors"
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/canteen-api/internal/shared/tx"
)

type counterTable struct {
	db     *DB
	values map[string]int
}

func (c *counterTable) Snapshot() any { return maps.Clone(c.values) }

func (c *counterTable) Restore(state any) { c.values = state.(map[string]int) }

func (c *counterTable) add(ctx context.Context, key string, delta int) {
	release := c.db.Acquire(ctx)
	defer release()
	c.values[key] += delta
}

func newCounter(db *DB) *counterTable {
	t := &counterTable{db: db, values: map[string]int{}}
	db.Register(t)
	return t
}

func TestWithinTransaction_CommitKeepsWrites(t *testing.T) {
	db := New()
	counter := newCounter(db)

	err := db.WithinTransaction(context.Background(), func(ctx context.Context) error {
		assert.True(t, tx.Active(ctx))
		counter.add(ctx, "stock", 5)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 5, counter.values["stock"])
}

func TestWithinTransaction_ErrorRollsBackEveryTable(t *testing.T) {
	db := New()
	stock := newCounter(db)
	orders := newCounter(db)
	stock.add(context.Background(), "stock", 10)

	boom := errors.New("boom")
	err := db.WithinTransaction(context.Background(), func(ctx context.Context) error {
		stock.add(ctx, "stock", -3)
		orders.add(ctx, "orders", 1)
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 10, stock.values["stock"])
	assert.Zero(t, orders.values["orders"])
}

func TestWithinTransaction_PanicRollsBack(t *testing.T) {
	db := New()
	counter := newCounter(db)

	assert.Panics(t, func() {
		_ = db.WithinTransaction(context.Background(), func(ctx context.Context) error {
			counter.add(ctx, "stock", 1)
			panic("unexpected")
		})
	})
	assert.Zero(t, counter.values["stock"])

	// the lock must have been released
	counter.add(context.Background(), "stock", 2)
	assert.Equal(t, 2, counter.values["stock"])
}

func TestWithinTransaction_NestedCallsJoin(t *testing.T) {
	db := New()
	counter := newCounter(db)

	err := db.WithinTransaction(context.Background(), func(ctx context.Context) error {
		counter.add(ctx, "stock", 1)
		inner := db.WithinTransaction(ctx, func(ctx context.Context) error {
			counter.add(ctx, "stock", 1)
			return nil
		})
		require.NoError(t, inner)
		return errors.New("outer fails")
	})

	require.Error(t, err)
	assert.Zero(t, counter.values["stock"])
}

func TestWithinTransaction_CommitHooksRunOnlyAfterCommit(t *testing.T) {
	db := New()
	counter := newCounter(db)
	var seen []int

	err := db.WithinTransaction(context.Background(), func(ctx context.Context) error {
		counter.add(ctx, "stock", 2)
		tx.AfterCommit(ctx, func(ctx context.Context) {
			assert.False(t, tx.Active(ctx))
			release := db.Acquire(ctx)
			defer release()
			seen = append(seen, counter.values["stock"])
		})
		assert.Empty(t, seen)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, seen)

	err = db.WithinTransaction(context.Background(), func(ctx context.Context) error {
		tx.AfterCommit(ctx, func(context.Context) { seen = append(seen, -1) })
		return errors.New("abort")
	})
	require.Error(t, err)
	assert.Equal(t, []int{2}, seen)
}
