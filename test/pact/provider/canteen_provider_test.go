//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	canteenserver "github.com/Apurer/canteen-api/go"
	"github.com/Apurer/canteen-api/internal/app/api"
	catalogdomain "github.com/Apurer/canteen-api/internal/domains/catalog/domain"
	checkoutworkflows "github.com/Apurer/canteen-api/internal/domains/checkout/adapters/workflows"
	userports "github.com/Apurer/canteen-api/internal/domains/users/ports"
	platformobservability "github.com/Apurer/canteen-api/internal/platform/observability"
	"github.com/Apurer/canteen-api/internal/shared/principal"
	pacttest "github.com/Apurer/canteen-api/test/pact"
)

func TestCanteenProviderPact(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	seedMenu := func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
		app.reset(t)
		if setup {
			app.seedProduct(t)
		}
		return nil, nil
	}
	verifier := pactprovider.NewVerifier()
	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers: models.StateHandlers{
			pacttest.StateMenuBaseline:  seedMenu,
			pacttest.StateProductExists: seedMenu,
			pacttest.StateProductAbsent: func(bool, models.ProviderState) (models.ProviderStateResponse, error) {
				app.reset(t)
				return nil, nil
			},
			pacttest.StateStudentExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
				app.reset(t)
				if setup {
					app.seedStudent(t)
				}
				return nil, nil
			},
		},
		BeforeEach: func() error {
			app.reset(t)
			return nil
		},
	})
	require.NoError(t, err)
}

// contractProviderApp rebuilds the in-memory services for every provider
// state so generated ids start from one.
type contractProviderApp struct {
	mu       sync.RWMutex
	handler  http.Handler
	services *api.Services
	server   *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()
	app := &contractProviderApp{}
	app.reset(t)
	app.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.mu.RLock()
		handler := app.handler
		app.mu.RUnlock()
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(app.server.Close)
	return app
}

func (a *contractProviderApp) reset(t testing.TB) {
	t.Helper()
	cfg := api.Config{
		JWTSecret:       "pact-provider-signing-secret",
		TokenTTL:        time.Hour,
		DefaultCurrency: "INR",
	}
	instruments := &platformobservability.Instruments{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	services, _, err := api.BuildServices(context.Background(), cfg, instruments)
	require.NoError(t, err)

	handlers := canteenserver.ApiHandleFunctions{
		AuthAPI:    canteenserver.NewAuthAPI(services.Users),
		ProductAPI: canteenserver.NewProductAPI(services.Catalog),
		CartAPI:    canteenserver.NewCartAPI(services.Cart, checkoutworkflows.NewInlineCheckout(services.Checkout)),
		OrderAPI:   canteenserver.NewOrderAPI(services.Orders),
		PaymentAPI: canteenserver.NewPaymentAPI(services.Payments),
		UserAPI:    canteenserver.NewUserAPI(services.Users),
		HealthAPI:  canteenserver.NewHealthAPI(nil),
	}
	router := canteenserver.NewRouterWithGinEngine(gin.New(), handlers, gin.Recovery())

	a.mu.Lock()
	a.services = services
	a.handler = router
	a.mu.Unlock()
}

func (a *contractProviderApp) seedProduct(t testing.TB) {
	t.Helper()
	admin := principal.Principal{UserID: 1, Role: principal.RoleAdmin}
	product, err := a.services.Catalog.UpsertProduct(context.Background(), admin, &catalogdomain.Product{
		Name:          pacttest.ProductName,
		Price:         decimal.RequireFromString(pacttest.ProductPrice),
		StockQuantity: 5,
		Tags:          []string{pacttest.ProductTag},
	})
	require.NoError(t, err)
	require.Equal(t, pacttest.ExistingProductID, product.ID)
}

func (a *contractProviderApp) seedStudent(t testing.TB) {
	t.Helper()
	_, err := a.services.Users.SignUp(context.Background(), userports.SignUpInput{
		Name:     "Pact Student",
		Email:    pacttest.StudentEmail,
		Password: pacttest.StudentPassword,
	})
	require.NoError(t, err)
}
