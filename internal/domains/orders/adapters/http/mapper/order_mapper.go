package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	ordersdomain "github.com/Apurer/canteen-api/internal/domains/orders/domain"
	ordersports "github.com/Apurer/canteen-api/internal/domains/orders/ports"
)

type OrderItem struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type Order struct {
	ID                   int64           `json:"id"`
	UserID               int64           `json:"user_id"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	Status               string          `json:"status"`
	PaymentMethod        string          `json:"payment_method"`
	PaymentStatus        string          `json:"payment_status"`
	ShippingAddress      string          `json:"shipping_address"`
	TrackingNumber       string          `json:"tracking_number,omitempty"`
	ExpectedDeliveryDate *time.Time      `json:"expected_delivery_date,omitempty"`
	Items                []OrderItem     `json:"items"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

type Payment struct {
	ID            int64           `json:"id"`
	OrderID       int64           `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"payment_method"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type CreateOrderRequest struct {
	UserID          int64              `json:"user_id"`
	Items           []OrderItemRequest `json:"items"`
	PaymentMethod   string             `json:"payment_method"`
	ShippingAddress string             `json:"shipping_address"`
}

type OrderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateOrderRequest struct {
	Status               *string    `json:"status"`
	ShippingAddress      *string    `json:"shipping_address"`
	TrackingNumber       *string    `json:"tracking_number"`
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date"`
}

type CreatePaymentRequest struct {
	OrderID       int64           `json:"order_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"payment_method"`
	TransactionID string          `json:"transaction_id"`
}

type UpdatePaymentRequest struct {
	Status        string `json:"status" binding:"required"`
	TransactionID string `json:"transaction_id"`
}

func FromDomainOrder(o *ordersdomain.Order) Order {
	if o == nil {
		return Order{Items: []OrderItem{}}
	}
	out := Order{
		ID:                   o.ID,
		UserID:               o.UserID,
		TotalAmount:          o.TotalAmount,
		Status:               string(o.Status),
		PaymentMethod:        o.PaymentMethod,
		PaymentStatus:        string(o.PaymentStatus),
		ShippingAddress:      o.ShippingAddress,
		TrackingNumber:       o.TrackingNumber,
		ExpectedDeliveryDate: o.ExpectedDeliveryDate,
		Items:                make([]OrderItem, 0, len(o.Items)),
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
	for _, item := range o.Items {
		out.Items = append(out.Items, OrderItem{ID: item.ID, ProductID: item.ProductID, Quantity: item.Quantity, Price: item.Price})
	}
	return out
}

func FromDomainOrders(orders []*ordersdomain.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, FromDomainOrder(o))
	}
	return out
}

func FromDomainPayment(p *ordersdomain.Payment) *Payment {
	if p == nil {
		return nil
	}
	return &Payment{
		ID:            p.ID,
		OrderID:       p.OrderID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		PaymentMethod: p.PaymentMethod,
		TransactionID: p.TransactionID,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func ToCreateOrderInput(req CreateOrderRequest) ordersports.CreateOrderInput {
	input := ordersports.CreateOrderInput{
		UserID:          req.UserID,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		Items:           make([]ordersports.ItemInput, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, ordersports.ItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return input
}

func ToOrderPatch(req UpdateOrderRequest) ordersports.OrderPatch {
	patch := ordersports.OrderPatch{
		ShippingAddress:      req.ShippingAddress,
		TrackingNumber:       req.TrackingNumber,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
	}
	if req.Status != nil {
		status := ordersdomain.Status(*req.Status)
		patch.Status = &status
	}
	return patch
}

func ToPaymentInput(req CreatePaymentRequest) ordersports.PaymentInput {
	return ordersports.PaymentInput{
		OrderID:       req.OrderID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
	}
}
