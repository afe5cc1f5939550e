package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/mocks"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/canteen-api/internal/domains/checkout/ports"
	ordersdomain "github.com/Apurer/canteen-api/internal/domains/orders/domain"
	"github.com/Apurer/canteen-api/internal/shared/failure"
	"github.com/Apurer/canteen-api/internal/shared/principal"
)

func TestBuildCheckoutWorkflowID(t *testing.T) {
	withKey := buildCheckoutWorkflowID(ports.Input{CartID: 4, IdempotencyKey: " k-1 "}, "trace")
	assert.Equal(t, withKey, buildCheckoutWorkflowID(ports.Input{CartID: 4, IdempotencyKey: "k-1"}, "other"))
	assert.Contains(t, withKey, "checkout-4-idem-")

	assert.Equal(t, "checkout-4-trace", buildCheckoutWorkflowID(ports.Input{CartID: 4}, "trace"))
}

func TestRestoreKind(t *testing.T) {
	appErr := temporal.NewNonRetryableApplicationError("cart is empty", failure.ErrEmptyCart.Error(), nil)
	require.ErrorIs(t, restoreKind(appErr), failure.ErrEmptyCart)

	plain := errors.New("dial tcp: refused")
	assert.Same(t, plain, restoreKind(plain))
}

func TestTemporalCheckout_RepeatedKeyWaitsOnRunningWorkflow(t *testing.T) {
	temporalClient := &mocks.Client{}
	existing := &mocks.WorkflowRun{}
	input := ports.Input{CartID: 9, IdempotencyKey: "k-9"}
	workflowID := buildCheckoutWorkflowID(input, "")

	failOnRunning := mock.MatchedBy(func(o client.StartWorkflowOptions) bool {
		return o.ID == workflowID && o.WorkflowExecutionErrorWhenAlreadyStarted
	})
	temporalClient.On("ExecuteWorkflow", mock.Anything, failOnRunning, mock.Anything, mock.Anything).
		Return(nil, serviceerror.NewWorkflowExecutionAlreadyStarted("running", "req-1", "run-1"))
	temporalClient.On("GetWorkflow", mock.Anything, workflowID, "run-1").Return(existing)
	existing.On("Get", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*ports.Result).Order = &ordersdomain.Order{ID: 77}
	}).Return(nil)

	result, err := NewTemporalCheckout(temporalClient).PlaceOrder(context.Background(), principal.Principal{UserID: 1}, input)
	require.NoError(t, err)
	require.NotNil(t, result.Order)
	assert.Equal(t, int64(77), result.Order.ID)
	assert.True(t, result.Replayed)
	temporalClient.AssertExpectations(t)
	existing.AssertExpectations(t)
}
