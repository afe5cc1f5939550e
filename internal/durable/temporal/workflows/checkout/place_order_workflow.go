package checkout

import (
	"go.temporal.io/sdk/workflow"

	checkoutports "github.com/Apurer/canteen-api/internal/domains/checkout/ports"
	checkoutactivities "github.com/Apurer/canteen-api/internal/durable/temporal/activities/checkout"
	"github.com/Apurer/canteen-api/internal/durable/temporal/sequences"
)

const (
	// PlaceOrderWorkflowName is the public identifier for registering the workflow.
	PlaceOrderWorkflowName = "checkout.workflows.PlaceOrder"
	// TaskQueue is the queue consumed by the worker processing checkout workflows.
	TaskQueue = "CHECKOUT"
)

// PlaceOrderWorkflowInput captures the payload required to check out a cart.
type PlaceOrderWorkflowInput struct {
	Command checkoutactivities.Command `json:"command"`
	TraceID string                     `json:"trace_id"`
}

// PlaceOrderWorkflow orchestrates the activities needed to turn a cart into an order.
func PlaceOrderWorkflow(ctx workflow.Context, input PlaceOrderWorkflowInput) (*checkoutports.Result, error) {
	logger := workflow.GetLogger(ctx)
	cartID := input.Command.Input.CartID
	logger.Info("PlaceOrderWorkflow started", withTraceID(input.TraceID, "cartId", cartID)...)
	result, err := sequences.RunCheckoutSequence(ctx, input.Command)
	if err != nil {
		logger.Error("PlaceOrderWorkflow failed", withTraceID(input.TraceID, "cartId", cartID, "error", err)...)
		return nil, err
	}
	if result != nil && result.Order != nil {
		logger.Info("PlaceOrderWorkflow completed", withTraceID(input.TraceID, "orderId", result.Order.ID)...)
	} else {
		logger.Info("PlaceOrderWorkflow completed", withTraceID(input.TraceID)...)
	}
	return result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
