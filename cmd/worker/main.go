package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/canteen-api/internal/app/api"
	checkoutactivities "github.com/Apurer/canteen-api/internal/durable/temporal/activities/checkout"
	checkoutworkflows "github.com/Apurer/canteen-api/internal/durable/temporal/workflows/checkout"
	platformobservability "github.com/Apurer/canteen-api/internal/platform/observability"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("canteen worker failed: %v", err)
	}
}

func run(ctx context.Context) error {
	const serviceName = "canteen-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	cfg, err := api.LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.PostgresDSN == "" {
		logger.Warn("worker running on in-memory repositories; orders it places are not visible to the API")
	}
	services, cleanup, err := api.BuildServices(ctx, cfg, instruments)
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}
	defer cleanup()
	activities := checkoutactivities.NewActivities(services.Checkout)

	cfg.TemporalDisabled = false
	temporalClient, err := api.ConnectTemporal(cfg, instruments)
	if err != nil {
		return fmt.Errorf("create Temporal client: %w", err)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, checkoutworkflows.TaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(checkoutworkflows.PlaceOrderWorkflow, workflow.RegisterOptions{Name: checkoutworkflows.PlaceOrderWorkflowName})
	w.RegisterActivityWithOptions(activities.PlaceOrder, activity.RegisterOptions{Name: checkoutactivities.PlaceOrderActivityName})

	logger.Info("worker listening", slog.String("taskQueue", checkoutworkflows.TaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		return fmt.Errorf("temporal worker: %w", err)
	}
	logger.Info("Temporal worker stopped")
	return nil
}
