package canteenserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ordersmapper "github.com/Apurer/canteen-api/internal/domains/orders/adapters/http/mapper"
	ordersdomain "github.com/Apurer/canteen-api/internal/domains/orders/domain"
	ordersports "github.com/Apurer/canteen-api/internal/domains/orders/ports"
)

// PaymentAPI serves payment records attached to orders.
type PaymentAPI struct {
	service ordersports.PaymentService
}

func NewPaymentAPI(service ordersports.PaymentService) PaymentAPI {
	return PaymentAPI{service: service}
}

// Post /payments
func (api *PaymentAPI) CreatePayment(c *gin.Context) {
	var payload ordersmapper.CreatePaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	payment, err := api.service.CreatePendingPayment(c.Request.Context(), callerFrom(c), ordersmapper.ToPaymentInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ordersmapper.FromDomainPayment(payment))
}

// Get /payments/order/:id
func (api *PaymentAPI) GetPaymentByOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	payment, err := api.service.GetPaymentByOrder(c.Request.Context(), callerFrom(c), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordersmapper.FromDomainPayment(payment))
}

// Put /payments/:id
// Changes the payment status and mirrors it onto the order.
func (api *PaymentAPI) UpdatePayment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload ordersmapper.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	status := ordersdomain.PaymentStatus(payload.Status)
	payment, err := api.service.UpdatePaymentStatus(c.Request.Context(), callerFrom(c), id, status, payload.TransactionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordersmapper.FromDomainPayment(payment))
}
