package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	cartinventory "github.com/Apurer/canteen-api/internal/domains/cart/adapters/inventory"
	cartmemory "github.com/Apurer/canteen-api/internal/domains/cart/adapters/memory"
	cartobs "github.com/Apurer/canteen-api/internal/domains/cart/adapters/observability"
	cartpostgres "github.com/Apurer/canteen-api/internal/domains/cart/adapters/persistence/postgres"
	cartapp "github.com/Apurer/canteen-api/internal/domains/cart/application"
	cartports "github.com/Apurer/canteen-api/internal/domains/cart/ports"
	catalogcache "github.com/Apurer/canteen-api/internal/domains/catalog/adapters/cache"
	catalogmemory "github.com/Apurer/canteen-api/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/Apurer/canteen-api/internal/domains/catalog/adapters/observability"
	catalogpostgres "github.com/Apurer/canteen-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/Apurer/canteen-api/internal/domains/catalog/application"
	catalogports "github.com/Apurer/canteen-api/internal/domains/catalog/ports"
	checkoutcarts "github.com/Apurer/canteen-api/internal/domains/checkout/adapters/carts"
	checkoutmemory "github.com/Apurer/canteen-api/internal/domains/checkout/adapters/memory"
	checkoutobs "github.com/Apurer/canteen-api/internal/domains/checkout/adapters/observability"
	checkoutorders "github.com/Apurer/canteen-api/internal/domains/checkout/adapters/orders"
	checkoutpostgres "github.com/Apurer/canteen-api/internal/domains/checkout/adapters/persistence/postgres"
	checkoutapp "github.com/Apurer/canteen-api/internal/domains/checkout/application"
	checkoutports "github.com/Apurer/canteen-api/internal/domains/checkout/ports"
	ordersinventory "github.com/Apurer/canteen-api/internal/domains/orders/adapters/inventory"
	ordersmemory "github.com/Apurer/canteen-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/canteen-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/canteen-api/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/Apurer/canteen-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/canteen-api/internal/domains/orders/ports"
	usermemory "github.com/Apurer/canteen-api/internal/domains/users/adapters/memory"
	userobs "github.com/Apurer/canteen-api/internal/domains/users/adapters/observability"
	"github.com/Apurer/canteen-api/internal/domains/users/adapters/password"
	userpostgres "github.com/Apurer/canteen-api/internal/domains/users/adapters/persistence/postgres"
	"github.com/Apurer/canteen-api/internal/domains/users/adapters/token"
	userapp "github.com/Apurer/canteen-api/internal/domains/users/application"
	userports "github.com/Apurer/canteen-api/internal/domains/users/ports"
	"github.com/Apurer/canteen-api/internal/platform/memdb"
	"github.com/Apurer/canteen-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/canteen-api/internal/platform/observability"
	"github.com/Apurer/canteen-api/internal/platform/outbox"
	platformpostgres "github.com/Apurer/canteen-api/internal/platform/postgres"
	platformredis "github.com/Apurer/canteen-api/internal/platform/redis"
	"github.com/Apurer/canteen-api/internal/shared/tx"
)

// Services is the fully wired application layer shared by every process.
type Services struct {
	Catalog  catalogports.Service
	Cart     cartports.Service
	Orders   ordersports.Service
	Payments ordersports.PaymentService
	Checkout checkoutports.Service
	Users    userports.Service
	Events   outbox.Store

	// DB and Redis are nil when the process runs on in-memory adapters.
	DB    *gorm.DB
	Redis *goredis.Client
}

type repositories struct {
	catalog     catalogports.Repository
	carts       cartports.Repository
	orders      ordersports.Repository
	payments    ordersports.PaymentRepository
	idempotency checkoutports.IdempotencyStore
	users       userports.Repository
	sessions    userports.SessionStore
	events      outbox.Store
	transactor  tx.Transactor
}

// BuildServices connects to Postgres and Redis when configured, falling back to
// in-memory adapters, and wraps every use case in its observability decorator.
// The returned cleanup closes whatever connections were opened.
func BuildServices(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*Services, func(), error) {
	logger := instruments.Logger
	services := &Services{}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	repos, db, closeDB, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, cleanup, err
	}
	closers = append(closers, closeDB)
	services.DB = db

	if cfg.RedisURL != "" {
		client, err := platformredis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, product reads go straight to the repository", slog.String("error", err.Error()))
		} else {
			closers = append(closers, func() { _ = client.Close() })
			services.Redis = client
			repos.catalog = catalogcache.New(repos.catalog, client, catalogcache.WithLogger(logger))
			logger.Info("product cache enabled")
		}
	}
	services.Events = repos.events

	services.Catalog = catalogobs.New(
		catalogapp.NewService(repos.catalog),
		catalogobs.WithLogger(logger),
		catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
		catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
	)
	services.Cart = cartobs.New(
		cartapp.NewService(repos.carts, cartinventory.NewCatalog(services.Catalog), repos.transactor),
		cartobs.WithLogger(logger),
		cartobs.WithTracer(instruments.Tracer("internal.cart.application")),
		cartobs.WithMeter(instruments.Meter("internal.cart.application")),
	)
	orders := ordersobs.New(
		ordersapp.NewService(repos.orders, repos.payments, ordersinventory.NewCatalog(services.Catalog), repos.events, repos.transactor,
			ordersapp.WithDefaultCurrency(cfg.DefaultCurrency)),
		ordersapp.NewPaymentService(repos.orders, repos.payments, repos.events, repos.transactor, cfg.DefaultCurrency),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	services.Orders = orders
	services.Payments = orders
	services.Checkout = checkoutobs.New(
		checkoutapp.NewService(
			checkoutcarts.NewRepository(repos.carts),
			checkoutorders.NewBook(repos.orders, repos.payments),
			repos.idempotency,
			repos.events,
			repos.transactor,
			checkoutapp.WithDefaultCurrency(cfg.DefaultCurrency),
		),
		checkoutobs.WithLogger(logger),
		checkoutobs.WithTracer(instruments.Tracer("internal.checkout.application")),
		checkoutobs.WithMeter(instruments.Meter("internal.checkout.application")),
	)

	signingSecret := cfg.JWTSecret
	if signingSecret == "" {
		signingSecret = uuid.NewString() + uuid.NewString()
		logger.Warn("JWT_SECRET not set, using an ephemeral signing key; tokens will not survive a restart")
	}
	if cfg.AdminSecretKey == "" {
		logger.Warn("ADMIN_SECRET_KEY not set, admin signup is disabled")
	}
	issuer, err := token.NewJWT(signingSecret)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("configure token issuer: %w", err)
	}
	services.Users = userobs.New(
		userapp.NewService(repos.users, repos.sessions, issuer, password.Bcrypt{},
			userapp.WithAdminSecret(cfg.AdminSecretKey),
			userapp.WithTokenTTL(cfg.TokenTTL),
		),
		userobs.WithLogger(logger),
		userobs.WithTracer(instruments.Tracer("internal.users.application")),
		userobs.WithMeter(instruments.Meter("internal.users.application")),
	)
	return services, cleanup, nil
}

func buildRepositories(ctx context.Context, cfg Config, logger *slog.Logger) (repositories, *gorm.DB, func(), error) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return memoryRepositories(), nil, func() {}, nil
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to in-memory repositories", slog.String("error", err.Error()))
		return memoryRepositories(), nil, func() {}, nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return repositories{}, nil, func() {}, fmt.Errorf("unwrap postgres connection: %w", err)
	}
	closeDB := func() { _ = sqlDB.Close() }
	if err := migrations.Run(db); err != nil {
		closeDB()
		return repositories{}, nil, func() {}, fmt.Errorf("migrate schema: %w", err)
	}
	logger.Info("repositories configured with postgres")
	return repositories{
		catalog:     catalogpostgres.NewRepository(db),
		carts:       cartpostgres.NewRepository(db),
		orders:      orderspostgres.NewRepository(db),
		payments:    orderspostgres.NewPaymentRepository(db),
		idempotency: checkoutpostgres.NewIdempotencyStore(db),
		users:       userpostgres.NewRepository(db),
		sessions:    userpostgres.NewSessionStore(db),
		events:      outbox.NewPostgresStore(db),
		transactor:  platformpostgres.NewTransactor(db),
	}, db, closeDB, nil
}

func memoryRepositories() repositories {
	db := memdb.New()
	orders, payments := ordersmemory.New(db)
	return repositories{
		catalog:     catalogmemory.NewRepository(db),
		carts:       cartmemory.NewRepository(db),
		orders:      orders,
		payments:    payments,
		idempotency: checkoutmemory.NewIdempotencyStore(db),
		users:       usermemory.NewRepository(),
		sessions:    usermemory.NewSessionStore(),
		events:      outbox.NewMemoryStore(db),
		transactor:  db,
	}
}
