package checkout

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	checkoutports "github.com/Apurer/canteen-api/internal/domains/checkout/ports"
	"github.com/Apurer/canteen-api/internal/shared/failure"
	"github.com/Apurer/canteen-api/internal/shared/principal"
)

// PlaceOrderActivityName runs the checkout coordinator for one cart.
const PlaceOrderActivityName = "checkout.activities.PlaceOrder"

// Command is the serialized checkout request handed to the activity.
type Command struct {
	Caller principal.Principal `json:"caller"`
	Input  checkoutports.Input `json:"input"`
}

// Activities groups activities that operate on the checkout bounded context.
type Activities struct {
	service checkoutports.Service
}

// NewActivities wires the checkout coordinator into the Temporal activities bundle.
func NewActivities(service checkoutports.Service) *Activities {
	return &Activities{service: service}
}

// PlaceOrder runs one checkout transaction. Business failures are returned as
// non-retryable application errors typed with their failure kind; only
// ConflictRetry and infrastructure errors are retried.
func (a *Activities) PlaceOrder(ctx context.Context, cmd Command) (*checkoutports.Result, error) {
	logger := activity.GetLogger(ctx)
	cartID := cmd.Input.CartID
	if a == nil || a.service == nil {
		logger.Error("checkout activity not initialized", "cartId", cartID)
		return nil, errors.New("checkout activity not initialized")
	}
	logger.Info("PlaceOrder activity started", "cartId", cartID)
	result, err := a.service.Checkout(ctx, cmd.Caller, cmd.Input)
	if err != nil {
		logger.Error("PlaceOrder activity failed", "cartId", cartID, "error", err)
		return nil, classify(err)
	}
	if result.Order != nil {
		logger.Info("PlaceOrder activity completed", "cartId", cartID, "orderId", result.Order.ID, "replayed", result.Replayed)
	}
	return result, nil
}

func classify(err error) error {
	kind := failure.Kind(err)
	if kind == nil || errors.Is(kind, failure.ErrConflictRetry) {
		return err
	}
	return temporal.NewNonRetryableApplicationError(err.Error(), kind.Error(), err)
}
