// Command housekeeper purges expired sessions and returns stock held by
// abandoned carts. It runs once and exits, for use from cron.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/Apurer/canteen-api/internal/app/api"
	platformobservability "github.com/Apurer/canteen-api/internal/platform/observability"
)

var errNoPostgres = errors.New("POSTGRES_DSN not set; nothing to clean up in an in-memory store")

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	err := run(ctx, api.LoadConfig, api.BuildServices)
	cancel()
	if err != nil {
		log.Fatalf("housekeeping failed: %v", err)
	}
}

type (
	configLoader    func() (api.Config, error)
	servicesBuilder func(context.Context, api.Config, *platformobservability.Instruments) (*api.Services, func(), error)
)

// run returns instead of exiting so the deferred cleanup always closes the
// database and Redis connections.
func run(ctx context.Context, loadConfig configLoader, build servicesBuilder) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.PostgresDSN == "" {
		return errNoPostgres
	}
	logger := platformobservability.NewLogger(platformobservability.ConfigFromEnv("canteen-housekeeper"))
	instruments := &platformobservability.Instruments{Logger: logger}

	services, cleanup, err := build(ctx, cfg, instruments)
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}
	defer cleanup()
	if services.DB == nil {
		return errors.New("postgres connection failed; cannot run housekeeping")
	}

	purged, err := services.Users.PurgeExpiredSessions(ctx)
	if err != nil {
		return fmt.Errorf("purge sessions: %w", err)
	}
	released, err := services.Cart.ReleaseAbandoned(ctx, cfg.CartReservation)
	if err != nil {
		return fmt.Errorf("release abandoned carts: %w", err)
	}
	logger.Info("housekeeping completed",
		slog.Int64("sessions.purged", purged),
		slog.Int("carts.released", released),
		slog.Duration("cart.reservation_ttl", cfg.CartReservation),
	)
	return nil
}
