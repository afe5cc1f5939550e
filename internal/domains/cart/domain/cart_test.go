package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCartTotal_IsExact(t *testing.T) {
	cart := &Cart{Items: []Item{
		{ProductID: 1, Quantity: 3, Price: decimal.RequireFromString("0.10")},
		{ProductID: 2, Quantity: 1, Price: decimal.RequireFromString("0.20")},
	}}

	assert.Equal(t, "0.5", cart.Total().String())
}

func TestValidateQuantity(t *testing.T) {
	assert.ErrorIs(t, ValidateQuantity(0), ErrInvalidQuantity)
	assert.ErrorIs(t, ValidateQuantity(-2), ErrInvalidQuantity)
	assert.NoError(t, ValidateQuantity(1))
}

func TestItemLookups(t *testing.T) {
	cart := &Cart{Items: []Item{{ID: 7, ProductID: 3, Quantity: 2}}}

	item, ok := cart.ItemByProduct(3)
	assert.True(t, ok)
	assert.Equal(t, int64(7), item.ID)

	_, ok = cart.ItemByID(8)
	assert.False(t, ok)
	assert.False(t, cart.IsEmpty())
}
