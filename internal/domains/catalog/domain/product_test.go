package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProductValidate(t *testing.T) {
	discount := decimal.RequireFromString("12.50")
	tooHigh := decimal.RequireFromString("99")
	fractionalDiscount := decimal.RequireFromString("9.995")

	tests := []struct {
		name    string
		product Product
		wantErr error
	}{
		{"valid", Product{Name: "Dosa", Price: decimal.NewFromInt(40), StockQuantity: 3}, nil},
		{"valid with discount", Product{Name: "Idli", Price: decimal.NewFromInt(15), DiscountedPrice: &discount}, nil},
		{"blank name", Product{Name: "  ", Price: decimal.NewFromInt(1)}, ErrInvalidName},
		{"zero price", Product{Name: "Tea", Price: decimal.Zero}, ErrInvalidPrice},
		{"trailing zeros", Product{Name: "Chai", Price: decimal.RequireFromString("10.500")}, nil},
		{"sub-paise price", Product{Name: "Chai", Price: decimal.RequireFromString("10.005")}, ErrInvalidPrice},
		{"sub-paise discount", Product{Name: "Lassi", Price: decimal.NewFromInt(20), DiscountedPrice: &fractionalDiscount}, ErrInvalidPrice},
		{"discount above price", Product{Name: "Vada", Price: decimal.NewFromInt(20), DiscountedPrice: &tooHigh}, ErrInvalidDiscount},
		{"negative stock", Product{Name: "Coffee", Price: decimal.NewFromInt(20), StockQuantity: -1}, ErrNegativeStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.product.Validate(), tt.wantErr)
		})
	}
}

func TestProductUnitPrice(t *testing.T) {
	p := Product{Price: decimal.RequireFromString("30.00")}
	assert.True(t, p.UnitPrice().Equal(decimal.RequireFromString("30")))

	discount := decimal.RequireFromString("25.50")
	p.DiscountedPrice = &discount
	assert.True(t, p.UnitPrice().Equal(discount))
}

func TestProductCloneIsDeep(t *testing.T) {
	discount := decimal.NewFromInt(5)
	p := &Product{Name: "Samosa", Price: decimal.NewFromInt(10), DiscountedPrice: &discount, Tags: []string{"snack"}}

	clone := p.Clone()
	clone.Tags[0] = "changed"
	*clone.DiscountedPrice = decimal.NewFromInt(1)

	assert.Equal(t, "snack", p.Tags[0])
	assert.True(t, p.DiscountedPrice.Equal(decimal.NewFromInt(5)))
	assert.True(t, p.HasTag("SNACK"))
}
