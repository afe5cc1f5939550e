package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidName     = errors.New("product name is required")
	ErrInvalidPrice    = errors.New("price must be greater than zero with at most 2 decimal places")
	ErrInvalidDiscount = errors.New("discounted price must be positive and not exceed price")
	ErrNegativeStock   = errors.New("stock quantity cannot be negative")
)

// Product is a sellable menu item together with its on-hand stock.
type Product struct {
	ID              int64
	Name            string
	Description     string
	Price           decimal.Decimal
	DiscountedPrice *decimal.Decimal
	StockQuantity   int
	ImageURL        string
	Size            string
	Color           string
	Tags            []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate enforces the catalog invariants.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidName
	}
	if !p.Price.IsPositive() || !inPaise(p.Price) {
		return ErrInvalidPrice
	}
	if p.DiscountedPrice != nil {
		if !inPaise(*p.DiscountedPrice) {
			return ErrInvalidPrice
		}
		if !p.DiscountedPrice.IsPositive() || p.DiscountedPrice.GreaterThan(p.Price) {
			return ErrInvalidDiscount
		}
	}
	if p.StockQuantity < 0 {
		return ErrNegativeStock
	}
	return nil
}

// inPaise reports whether d fits numeric(12,2) without rounding.
func inPaise(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// UnitPrice is the price a customer pays now: the discounted price when set, the list price otherwise.
func (p *Product) UnitPrice() decimal.Decimal {
	if p.DiscountedPrice != nil {
		return *p.DiscountedPrice
	}
	return p.Price
}

// Clone returns a deep copy.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	if p.DiscountedPrice != nil {
		d := *p.DiscountedPrice
		clone.DiscountedPrice = &d
	}
	if p.Tags != nil {
		clone.Tags = append([]string(nil), p.Tags...)
	}
	return &clone
}

// HasTag reports whether the product carries tag, ignoring case.
func (p *Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
