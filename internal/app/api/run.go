package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"

	canteenserver "github.com/Apurer/canteen-api/go"
	checkoutworkflows "github.com/Apurer/canteen-api/internal/domains/checkout/adapters/workflows"
	checkoutports "github.com/Apurer/canteen-api/internal/domains/checkout/ports"
	platformobservability "github.com/Apurer/canteen-api/internal/platform/observability"
	"github.com/Apurer/canteen-api/internal/platform/outbox"
)

const serviceName = "canteen-api"

// Run boots the canteen HTTP API with observability, repositories, the outbox
// relay and checkout workflows wired. It returns when ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	services, cleanup, err := BuildServices(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer cleanup()

	relayCtx, stopRelay := context.WithCancel(ctx)
	defer stopRelay()
	publisher := newPublisher(cfg, logger)
	defer publisher.Close()
	go outbox.NewRelay(services.Events, publisher, cfg.OutboxInterval, logger).Run(relayCtx)

	var checkout checkoutports.WorkflowOrchestrator = checkoutworkflows.NewInlineCheckout(services.Checkout)
	checks := map[string]canteenserver.HealthCheck{}
	if temporalClient, err := ConnectTemporal(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, running checkout inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		checkout = checkoutworkflows.NewTemporalCheckout(temporalClient)
		checks["temporal"] = func(ctx context.Context) error {
			_, err := temporalClient.CheckHealth(ctx, &client.CheckHealthRequest{})
			return err
		}
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}
	if services.DB != nil {
		checks["postgres"] = func(ctx context.Context) error {
			sqlDB, err := services.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if services.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return services.Redis.Ping(ctx).Err()
		}
	}

	handlers := canteenserver.ApiHandleFunctions{
		AuthAPI:    canteenserver.NewAuthAPI(services.Users),
		ProductAPI: canteenserver.NewProductAPI(services.Catalog),
		CartAPI:    canteenserver.NewCartAPI(services.Cart, checkout),
		OrderAPI:   canteenserver.NewOrderAPI(services.Orders),
		PaymentAPI: canteenserver.NewPaymentAPI(services.Payments),
		UserAPI:    canteenserver.NewUserAPI(services.Users),
		HealthAPI:  canteenserver.NewHealthAPI(checks),
	}
	router := canteenserver.NewRouterWithGinEngine(gin.New(), handlers,
		otelgin.Middleware(serviceName),
		gin.Recovery(),
	)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Canteen API listening", slog.String("addr", server.Addr))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("Canteen API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down Canteen API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newPublisher(cfg Config, logger *slog.Logger) outbox.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("KAFKA_BROKERS not set, outbox events are logged")
		return outbox.NewLogPublisher(logger)
	}
	logger.Info("outbox relay publishing to kafka", slog.String("topic", cfg.KafkaTopic))
	return outbox.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
}
