package failure

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKind(t *testing.T) {
	productMissing := fmt.Errorf("product %w", ErrNotFound)
	require.Equal(t, ErrNotFound, Kind(productMissing))
	require.Equal(t, ErrInsufficientStock, Kind(fmt.Errorf("reserve: %w", ErrInsufficientStock)))
	require.Equal(t, ErrConflictRetry, Kind(fmt.Errorf("tx: %w", ErrConflictRetry)))
	require.Nil(t, Kind(errors.New("boom")))
	require.Nil(t, Kind(nil))
}

func TestParse(t *testing.T) {
	require.Equal(t, ErrEmptyCart, Parse(ErrEmptyCart.Error()))
	require.Equal(t, ErrConflictRetry, Parse(ErrConflictRetry.Error()))
	require.Nil(t, Parse("something else"))
}
