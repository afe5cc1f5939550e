package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidQuantity = errors.New("quantity must be greater than zero")

// Cart is the per-user basket. It is created lazily and emptied, never deleted.
type Cart struct {
	ID        int64
	UserID    int64
	Items     []Item
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item is one product line. Its quantity is already reserved against stock.
type Item struct {
	ID        int64
	CartID    int64
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateQuantity rejects non-positive quantities.
func ValidateQuantity(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// Subtotal is the price snapshot times quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Total sums every line exactly.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// IsEmpty reports whether the cart holds no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemByProduct returns the line for productID.
func (c *Cart) ItemByProduct(productID int64) (Item, bool) {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return Item{}, false
}

// ItemByID returns the line with the given identifier.
func (c *Cart) ItemByID(itemID int64) (Item, bool) {
	for _, item := range c.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return Item{}, false
}

// Clone returns a deep copy.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Items = append([]Item(nil), c.Items...)
	return &clone
}
