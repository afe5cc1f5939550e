package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	cartdomain "github.com/Apurer/canteen-api/internal/domains/cart/domain"
)

type CartItem struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type Cart struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Items     []CartItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type AddItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity"`
}

type UpdateItemRequest struct {
	CartItemID int64 `json:"cart_item_id" binding:"required"`
	Quantity   int   `json:"quantity"`
}

type RemoveItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
}

func FromDomainCart(cart *cartdomain.Cart) Cart {
	if cart == nil {
		return Cart{Items: []CartItem{}}
	}
	out := Cart{
		ID:        cart.ID,
		UserID:    cart.UserID,
		Items:     make([]CartItem, 0, len(cart.Items)),
		Total:     cart.Total(),
		UpdatedAt: cart.UpdatedAt,
	}
	for _, item := range cart.Items {
		out.Items = append(out.Items, CartItem{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Subtotal:  item.Subtotal(),
		})
	}
	return out
}
