package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/Apurer/canteen-api/internal/domains/catalog/domain"
)

// Product is the JSON shape exchanged with clients.
type Product struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Price           decimal.Decimal  `json:"price"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price,omitempty"`
	StockQuantity   int              `json:"stock_quantity"`
	ImageURL        string           `json:"image_url"`
	Size            string           `json:"size,omitempty"`
	Color           string           `json:"color,omitempty"`
	Tags            []string         `json:"tags"`
	CreatedAt       *time.Time       `json:"created_at,omitempty"`
	UpdatedAt       *time.Time       `json:"updated_at,omitempty"`
}

// ToDomainProduct converts a transport product; validation happens in the service.
func ToDomainProduct(p Product) *catalogdomain.Product {
	return &catalogdomain.Product{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		DiscountedPrice: p.DiscountedPrice,
		StockQuantity:   p.StockQuantity,
		ImageURL:        p.ImageURL,
		Size:            p.Size,
		Color:           p.Color,
		Tags:            p.Tags,
	}
}

func FromDomainProduct(p *catalogdomain.Product) Product {
	if p == nil {
		return Product{}
	}
	out := Product{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		DiscountedPrice: p.DiscountedPrice,
		StockQuantity:   p.StockQuantity,
		ImageURL:        p.ImageURL,
		Size:            p.Size,
		Color:           p.Color,
		Tags:            p.Tags,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if !p.CreatedAt.IsZero() {
		created := p.CreatedAt
		out.CreatedAt = &created
	}
	if !p.UpdatedAt.IsZero() {
		updated := p.UpdatedAt
		out.UpdatedAt = &updated
	}
	return out
}

func FromDomainProducts(products []*catalogdomain.Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		out = append(out, FromDomainProduct(p))
	}
	return out
}
