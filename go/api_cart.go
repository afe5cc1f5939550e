package canteenserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	cartmapper "github.com/Apurer/canteen-api/internal/domains/cart/adapters/http/mapper"
	cartports "github.com/Apurer/canteen-api/internal/domains/cart/ports"
	checkoutmapper "github.com/Apurer/canteen-api/internal/domains/checkout/adapters/http/mapper"
	checkoutports "github.com/Apurer/canteen-api/internal/domains/checkout/ports"
)

// IdempotencyKeyHeader lets clients retry checkout safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// CartAPI serves the caller's cart and checkout.
type CartAPI struct {
	service   cartports.Service
	workflows checkoutports.WorkflowOrchestrator
}

func NewCartAPI(service cartports.Service, workflows checkoutports.WorkflowOrchestrator) CartAPI {
	return CartAPI{service: service, workflows: workflows}
}

// Get /cart
// Returns the caller's cart, creating it on first use.
func (api *CartAPI) GetCart(c *gin.Context) {
	cart, err := api.service.GetCart(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartmapper.FromDomainCart(cart))
}

// Post /cart/add
// Reserves stock for the product and merges it into the cart.
func (api *CartAPI) AddItem(c *gin.Context) {
	var payload cartmapper.AddItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	cart, err := api.service.AddItem(c.Request.Context(), callerFrom(c), payload.ProductID, payload.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartmapper.FromDomainCart(cart))
}

// Post /cart/update
func (api *CartAPI) UpdateItem(c *gin.Context) {
	var payload cartmapper.UpdateItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	cart, err := api.service.UpdateItemQuantity(c.Request.Context(), callerFrom(c), payload.CartItemID, payload.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartmapper.FromDomainCart(cart))
}

// Post /cart/remove
func (api *CartAPI) RemoveItem(c *gin.Context) {
	var payload cartmapper.RemoveItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	cart, err := api.service.RemoveItem(c.Request.Context(), callerFrom(c), payload.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartmapper.FromDomainCart(cart))
}

// Post /cart/clear
func (api *CartAPI) ClearCart(c *gin.Context) {
	cart, err := api.service.ClearCart(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartmapper.FromDomainCart(cart))
}

// Post /cart/checkout
// Turns the cart into an order with a pending payment. Without cart_id the
// caller's own cart is used.
func (api *CartAPI) Checkout(c *gin.Context) {
	var payload checkoutmapper.CheckoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			respondBindError(c, err)
			return
		}
	}
	ctx := c.Request.Context()
	caller := callerFrom(c)
	if payload.CartID == 0 {
		cart, err := api.service.GetCart(ctx, caller)
		if err != nil {
			respondError(c, err)
			return
		}
		payload.CartID = cart.ID
	}
	input := checkoutmapper.ToInput(payload, strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader)))
	result, err := api.workflows.PlaceOrder(ctx, caller, input)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, checkoutmapper.FromResult(result))
}
