package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	checkoutactivities "github.com/Apurer/canteen-api/internal/durable/temporal/activities/checkout"
	checkoutports "github.com/Apurer/canteen-api/internal/domains/checkout/ports"
)

// RunCheckoutSequence executes the activities needed to place an order from a cart.
func RunCheckoutSequence(ctx workflow.Context, cmd checkoutactivities.Command) (*checkoutports.Result, error) {
	logger := workflow.GetLogger(ctx)
	cartID := cmd.Input.CartID
	logger.Info("checkout sequence started", "cartId", cartID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var result checkoutports.Result
	err := workflow.ExecuteActivity(ctx, checkoutactivities.PlaceOrderActivityName, cmd).Get(ctx, &result)
	if err != nil {
		logger.Error("checkout sequence failed", "cartId", cartID, "error", err)
		return nil, err
	}
	if result.Order != nil {
		logger.Info("checkout sequence completed", "cartId", cartID, "orderId", result.Order.ID)
	} else {
		logger.Info("checkout sequence completed", "cartId", cartID)
	}
	return &result, nil
}
