// Package memdb gives the in-memory adapters the same all-or-nothing
// semantics the Postgres adapters get from a database transaction.
//
// Every registered table is snapshotted when a transaction starts and
// restored when it fails. A single mutex serializes writers across all
// tables, so the in-memory mode trades throughput for simplicity.
package memdb

import (
	"context"
	"sync"

	"github.com/Apurer/canteen-api/internal/shared/tx"
)

// Table is implemented by in-memory repositories that participate in transactions.
type Table interface {
	// Snapshot returns a deep copy of the table state.
	Snapshot() any
	// Restore replaces the table state with a value produced by Snapshot.
	Restore(state any)
}

// DB coordinates the in-memory tables of one process.
type DB struct {
	mu     sync.Mutex
	tables []Table
}

// New creates an empty in-memory database.
func New() *DB {
	return &DB{}
}

type txKey struct{ db *DB }

// Register adds a table to the set snapshotted by WithinTransaction.
func (d *DB) Register(t Table) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tables = append(d.tables, t)
}

// WithinTransaction runs fn while holding the database lock. When fn returns
// an error or panics, every registered table is rolled back. Commit hooks run
// after the lock is released.
func (d *DB) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if d.inTx(ctx) {
		return fn(ctx)
	}
	txCtx := tx.MarkActive(context.WithValue(ctx, txKey{d}, true))
	if err := d.commit(txCtx, fn); err != nil {
		return err
	}
	tx.Committed(ctx, txCtx)
	return nil
}

func (d *DB) commit(txCtx context.Context, fn func(ctx context.Context) error) (err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	snapshots := make([]any, len(d.tables))
	for i, t := range d.tables {
		snapshots[i] = t.Snapshot()
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		for i, t := range d.tables {
			t.Restore(snapshots[i])
		}
	}()

	if err = fn(txCtx); err != nil {
		return err
	}
	committed = true
	return nil
}

// Acquire serializes a single repository call. Inside a transaction the lock
// is already held, so the returned release is a no-op.
func (d *DB) Acquire(ctx context.Context) func() {
	if d.inTx(ctx) {
		return func() {}
	}
	d.mu.Lock()
	return d.mu.Unlock
}

func (d *DB) inTx(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	active, _ := ctx.Value(txKey{d}).(bool)
	return active
}
