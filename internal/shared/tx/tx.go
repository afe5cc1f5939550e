// Package tx abstracts transactional boundaries spanning several repositories.
package tx

import (
	"context"
	"sync"
)

// Transactor runs fn inside a single unit of work. Repositories invoked with
// the context handed to fn participate in the same transaction; a non-nil
// error from fn rolls every write back. Nested calls join the outer unit.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type activeKey struct{}

type unit struct {
	mu    sync.Mutex
	hooks []func(context.Context)
}

// MarkActive flags ctx as running inside a fresh transaction.
func MarkActive(ctx context.Context) context.Context {
	return context.WithValue(ctx, activeKey{}, &unit{})
}

// Active reports whether ctx runs inside a transaction started by any Transactor.
func Active(ctx context.Context) bool {
	_, ok := ctx.Value(activeKey{}).(*unit)
	return ok
}

// AfterCommit defers fn until the transaction bound to ctx commits. Rolled back
// transactions drop their hooks. Outside a transaction fn runs immediately.
func AfterCommit(ctx context.Context, fn func(ctx context.Context)) {
	u, ok := ctx.Value(activeKey{}).(*unit)
	if !ok {
		fn(ctx)
		return
	}
	u.mu.Lock()
	u.hooks = append(u.hooks, fn)
	u.mu.Unlock()
}

// Committed runs the hooks registered on txCtx, in order, with ctx. Transactors
// call it once the unit has committed, passing the caller's own context.
func Committed(ctx, txCtx context.Context) {
	u, ok := txCtx.Value(activeKey{}).(*unit)
	if !ok {
		return
	}
	u.mu.Lock()
	hooks := u.hooks
	u.hooks = nil
	u.mu.Unlock()
	for _, fn := range hooks {
		fn(ctx)
	}
}
