package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/canteen-api/internal/domains/checkout/ports"
	checkoutactivities "github.com/Apurer/canteen-api/internal/durable/temporal/activities/checkout"
	checkoutworkflows "github.com/Apurer/canteen-api/internal/durable/temporal/workflows/checkout"
	"github.com/Apurer/canteen-api/internal/shared/failure"
	"github.com/Apurer/canteen-api/internal/shared/principal"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalCheckout)(nil)
	_ ports.WorkflowOrchestrator = (*InlineCheckout)(nil)
)

// TemporalCheckout starts checkout workflows on a Temporal cluster.
type TemporalCheckout struct {
	client    client.Client
	taskQueue string
}

// NewTemporalCheckout wires a Temporal client into the orchestrator.
func NewTemporalCheckout(c client.Client) *TemporalCheckout {
	return &TemporalCheckout{client: c, taskQueue: checkoutworkflows.TaskQueue}
}

// PlaceOrder starts the checkout workflow and waits for its result. A request
// repeating an idempotency key while that workflow is still running waits on
// it and reports the result as replayed.
func (o *TemporalCheckout) PlaceOrder(ctx context.Context, caller principal.Principal, input ports.Input) (*ports.Result, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal checkout workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildCheckoutWorkflowID(input, traceComponent)
	options := client.StartWorkflowOptions{
		ID:                                       workflowID,
		TaskQueue:                                o.taskQueue,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		checkoutworkflows.PlaceOrderWorkflow,
		checkoutworkflows.PlaceOrderWorkflowInput{
			Command: checkoutactivities.Command{Caller: caller, Input: input},
			TraceID: traceComponent,
		},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) && strings.TrimSpace(input.IdempotencyKey) != "" {
			existingRun := o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
			var result ports.Result
			if err := existingRun.Get(ctx, &result); err != nil {
				return nil, restoreKind(err)
			}
			result.Replayed = true
			return &result, nil
		}
		return nil, err
	}
	var result ports.Result
	if err := run.Get(ctx, &result); err != nil {
		return nil, restoreKind(err)
	}
	return &result, nil
}

// InlineCheckout executes the coordinator directly without Temporal, useful for tests or dev fallbacks.
type InlineCheckout struct {
	service ports.Service
}

// NewInlineCheckout wraps the checkout coordinator for synchronous execution.
func NewInlineCheckout(service ports.Service) *InlineCheckout {
	return &InlineCheckout{service: service}
}

func (o *InlineCheckout) PlaceOrder(ctx context.Context, caller principal.Principal, input ports.Input) (*ports.Result, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline checkout workflows not configured")
	}
	return o.service.Checkout(ctx, caller, input)
}

// restoreKind re-attaches the failure kind carried as the application error type.
func restoreKind(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	kind := failure.Parse(appErr.Type())
	if kind == nil {
		return err
	}
	return fmt.Errorf("%w: %s", kind, appErr.Error())
}

func buildCheckoutWorkflowID(input ports.Input, traceComponent string) string {
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" {
		return fmt.Sprintf("checkout-%d-idem-%s", input.CartID, hashIdempotencyKey(key))
	}
	return fmt.Sprintf("checkout-%d-%s", input.CartID, traceComponent)
}

func hashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	// First 16 hex chars keep workflow IDs readable while remaining deterministic.
	return hex.EncodeToString(sum[:8])
}

func workflowTraceComponent(ctx context.Context) string {
	if traceComponent := workflowTraceID(ctx); traceComponent != "" {
		return traceComponent
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
