package canteenserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ordersmapper "github.com/Apurer/canteen-api/internal/domains/orders/adapters/http/mapper"
	ordersports "github.com/Apurer/canteen-api/internal/domains/orders/ports"
)

// OrderAPI serves order queries and admin management.
type OrderAPI struct {
	service ordersports.Service
}

func NewOrderAPI(service ordersports.Service) OrderAPI {
	return OrderAPI{service: service}
}

// Get /orders
// Admins see every order, users only their own.
func (api *OrderAPI) ListOrders(c *gin.Context) {
	orders, err := api.service.ListOrders(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordersmapper.FromDomainOrders(orders))
}

// Get /orders/:id
func (api *OrderAPI) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := api.service.GetOrder(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordersmapper.FromDomainOrder(order))
}

// Post /orders
// Records a manual order priced from the catalog.
func (api *OrderAPI) CreateOrder(c *gin.Context) {
	var payload ordersmapper.CreateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	order, err := api.service.CreateOrder(c.Request.Context(), callerFrom(c), ordersmapper.ToCreateOrderInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ordersmapper.FromDomainOrder(order))
}

// Put /orders/:id
func (api *OrderAPI) UpdateOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload ordersmapper.UpdateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	order, err := api.service.UpdateOrder(c.Request.Context(), callerFrom(c), id, ordersmapper.ToOrderPatch(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordersmapper.FromDomainOrder(order))
}

// Delete /orders/:id
func (api *OrderAPI) DeleteOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := api.service.DeleteOrder(c.Request.Context(), callerFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}
