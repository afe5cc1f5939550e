package tx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAfterCommit_OutsideTransactionRunsNow(t *testing.T) {
	ran := false
	AfterCommit(context.Background(), func(context.Context) { ran = true })
	assert.True(t, ran)
}

func TestCommitted_RunsHooksInOrderOnce(t *testing.T) {
	ctx := context.Background()
	txCtx := MarkActive(ctx)
	var order []string

	AfterCommit(txCtx, func(ctx context.Context) {
		assert.False(t, Active(ctx))
		order = append(order, "first")
	})
	AfterCommit(txCtx, func(context.Context) { order = append(order, "second") })
	assert.Empty(t, order)

	Committed(ctx, txCtx)
	Committed(ctx, txCtx)
	assert.Equal(t, []string{"first", "second"}, order)
}
