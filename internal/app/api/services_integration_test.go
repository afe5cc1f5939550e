//go:build integration

package api

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	catalogdomain "github.com/Apurer/canteen-api/internal/domains/catalog/domain"
	checkoutports "github.com/Apurer/canteen-api/internal/domains/checkout/ports"
	ordersdomain "github.com/Apurer/canteen-api/internal/domains/orders/domain"
	userports "github.com/Apurer/canteen-api/internal/domains/users/ports"
	platformobservability "github.com/Apurer/canteen-api/internal/platform/observability"
	"github.com/Apurer/canteen-api/internal/shared/failure"
	"github.com/Apurer/canteen-api/internal/shared/principal"
)

func setupServices(t *testing.T) (*Services, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("canteen_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	cfg := Config{
		PostgresDSN:     dsn,
		JWTSecret:       "integration-signing-secret",
		TokenTTL:        time.Hour,
		DefaultCurrency: "INR",
	}
	instruments := &platformobservability.Instruments{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	services, closeServices, err := BuildServices(ctx, cfg, instruments)
	require.NoError(t, err)
	require.NotNil(t, services.DB, "expected postgres-backed services")

	return services, func() {
		closeServices()
		pgContainer.Terminate(ctx)
	}
}

func signUp(t *testing.T, s *Services, email string) principal.Principal {
	t.Helper()
	res, err := s.Users.SignUp(context.Background(), userports.SignUpInput{Name: "Student", Email: email, Password: "hunter22"})
	require.NoError(t, err)
	return res.User.Principal()
}

var admin = principal.Principal{UserID: 1_000_000, Role: principal.RoleAdmin}

func TestServices_CheckoutFlowOnPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	discounted := decimal.RequireFromString("50")
	product, err := s.Catalog.UpsertProduct(ctx, admin, &catalogdomain.Product{
		Name: "Veg Thali", Price: decimal.RequireFromString("60"), DiscountedPrice: &discounted, StockQuantity: 5,
	})
	require.NoError(t, err)

	alice := signUp(t, s, "alice@campus.edu")
	bob := signUp(t, s, "bob@campus.edu")

	cart, err := s.Cart.AddItem(ctx, alice, product.ID, 3)
	require.NoError(t, err)
	_, err = s.Cart.AddItem(ctx, bob, product.ID, 3)
	require.ErrorIs(t, err, failure.ErrInsufficientStock)

	result, err := s.Checkout.Checkout(ctx, alice, checkoutports.Input{CartID: cart.ID, IdempotencyKey: "lunch-1"})
	require.NoError(t, err)
	assert.Equal(t, "150", result.Order.TotalAmount.String())
	assert.Equal(t, ordersdomain.PaymentPending, result.Payment.Status)

	replay, err := s.Checkout.Checkout(ctx, alice, checkoutports.Input{CartID: cart.ID, IdempotencyKey: "lunch-1"})
	require.NoError(t, err)
	assert.True(t, replay.Replayed)
	assert.Equal(t, result.Order.ID, replay.Order.ID)

	_, err = s.Checkout.Checkout(ctx, alice, checkoutports.Input{CartID: cart.ID})
	require.ErrorIs(t, err, failure.ErrEmptyCart)

	stocked, err := s.Catalog.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stocked.StockQuantity)

	paid, err := s.Payments.UpdatePaymentStatus(ctx, alice, result.Payment.ID, ordersdomain.PaymentPaid, "txn-1")
	require.NoError(t, err)
	assert.Equal(t, ordersdomain.PaymentPaid, paid.Status)
	order, err := s.Orders.GetOrder(ctx, alice, result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, ordersdomain.PaymentPaid, order.PaymentStatus)

	_, err = s.Orders.GetOrder(ctx, bob, result.Order.ID)
	require.ErrorIs(t, err, failure.ErrForbidden)

	pending, err := s.Events.Pending(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestServices_ConcurrentReservationsNeverOversell(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	product, err := s.Catalog.UpsertProduct(ctx, admin, &catalogdomain.Product{
		Name: "Samosa", Price: decimal.RequireFromString("15"), StockQuantity: 5,
	})
	require.NoError(t, err)

	const buyers = 12
	callers := make([]principal.Principal, buyers)
	for i := range callers {
		callers[i] = signUp(t, s, "buyer"+string(rune('a'+i))+"@campus.edu")
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		reserved int
	)
	for _, caller := range callers {
		wg.Add(1)
		go func(caller principal.Principal) {
			defer wg.Done()
			_, err := s.Cart.AddItem(ctx, caller, product.ID, 1)
			if err != nil {
				assert.ErrorIs(t, err, failure.ErrInsufficientStock)
				return
			}
			mu.Lock()
			reserved++
			mu.Unlock()
		}(caller)
	}
	wg.Wait()

	assert.Equal(t, 5, reserved)
	got, err := s.Catalog.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.StockQuantity)
}

func TestServices_Housekeeping(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	product, err := s.Catalog.UpsertProduct(ctx, admin, &catalogdomain.Product{
		Name: "Lassi", Price: decimal.RequireFromString("30"), StockQuantity: 4,
	})
	require.NoError(t, err)
	alice := signUp(t, s, "alice@campus.edu")
	_, err = s.Cart.AddItem(ctx, alice, product.ID, 4)
	require.NoError(t, err)

	released, err := s.Cart.ReleaseAbandoned(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, released, "fresh carts are not abandoned")

	require.NoError(t, s.DB.Exec("UPDATE carts SET updated_at = NOW() - INTERVAL '2 hours'").Error)
	released, err = s.Cart.ReleaseAbandoned(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, released)

	got, err := s.Catalog.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.StockQuantity)

	purged, err := s.Users.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Zero(t, purged)
}
