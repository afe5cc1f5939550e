package canteenserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	cartinventory "github.com/Apurer/canteen-api/internal/domains/cart/adapters/inventory"
	cartmemory "github.com/Apurer/canteen-api/internal/domains/cart/adapters/memory"
	cartapp "github.com/Apurer/canteen-api/internal/domains/cart/application"
	catalogmemory "github.com/Apurer/canteen-api/internal/domains/catalog/adapters/memory"
	catalogapp "github.com/Apurer/canteen-api/internal/domains/catalog/application"
	checkoutcarts "github.com/Apurer/canteen-api/internal/domains/checkout/adapters/carts"
	checkoutmemory "github.com/Apurer/canteen-api/internal/domains/checkout/adapters/memory"
	checkoutorders "github.com/Apurer/canteen-api/internal/domains/checkout/adapters/orders"
	checkoutworkflows "github.com/Apurer/canteen-api/internal/domains/checkout/adapters/workflows"
	checkoutapp "github.com/Apurer/canteen-api/internal/domains/checkout/application"
	ordersinventory "github.com/Apurer/canteen-api/internal/domains/orders/adapters/inventory"
	ordersmemory "github.com/Apurer/canteen-api/internal/domains/orders/adapters/memory"
	ordersapp "github.com/Apurer/canteen-api/internal/domains/orders/application"
	usermemory "github.com/Apurer/canteen-api/internal/domains/users/adapters/memory"
	"github.com/Apurer/canteen-api/internal/domains/users/adapters/password"
	"github.com/Apurer/canteen-api/internal/domains/users/adapters/token"
	userapp "github.com/Apurer/canteen-api/internal/domains/users/application"
	apierrors "github.com/Apurer/canteen-api/internal/shared/errors"
	"github.com/Apurer/canteen-api/internal/platform/memdb"
	"github.com/Apurer/canteen-api/internal/platform/outbox"
)

const adminSecret = "router-test-admin-secret"

type testServer struct {
	router *gin.Engine
	events *outbox.MemoryStore
}

func newTestServer(t *testing.T, checks map[string]HealthCheck) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := memdb.New()
	catalog := catalogapp.NewService(catalogmemory.NewRepository(db))
	cartRepo := cartmemory.NewRepository(db)
	cart := cartapp.NewService(cartRepo, cartinventory.NewCatalog(catalog), db)
	orderRepo, paymentRepo := ordersmemory.New(db)
	events := outbox.NewMemoryStore(db)
	orders := ordersapp.NewService(orderRepo, paymentRepo, ordersinventory.NewCatalog(catalog), events, db)
	payments := ordersapp.NewPaymentService(orderRepo, paymentRepo, events, db, "")
	checkout := checkoutapp.NewService(
		checkoutcarts.NewRepository(cartRepo),
		checkoutorders.NewBook(orderRepo, paymentRepo),
		checkoutmemory.NewIdempotencyStore(db),
		events,
		db,
	)

	jwt, err := token.NewJWT("router-test-signing-secret")
	require.NoError(t, err)
	users := userapp.NewService(
		usermemory.NewRepository(),
		usermemory.NewSessionStore(),
		jwt,
		password.Bcrypt{Cost: bcrypt.MinCost},
		userapp.WithAdminSecret(adminSecret),
	)

	handlers := ApiHandleFunctions{
		AuthAPI:    NewAuthAPI(users),
		ProductAPI: NewProductAPI(catalog),
		CartAPI:    NewCartAPI(cart, checkoutworkflows.NewInlineCheckout(checkout)),
		OrderAPI:   NewOrderAPI(orders),
		PaymentAPI: NewPaymentAPI(payments),
		UserAPI:    NewUserAPI(users),
		HealthAPI:  NewHealthAPI(checks),
	}
	return &testServer{router: NewRouterWithGinEngine(gin.New(), handlers), events: events}
}

func (s *testServer) do(t *testing.T, method, path, bearer string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *testServer) signUp(t *testing.T, email string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/signup", "", gin.H{"name": "Student", "email": email, "password": "hunter22"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "user", body["role"])
	return body["token"].(string)
}

func (s *testServer) admin(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/admin_signup", "", gin.H{"email": "chef@campus.edu", "password": "kitchen1", "secretKey": adminSecret})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "admin", body["role"])
	return body["token"].(string)
}

func (s *testServer) product(t *testing.T, adminToken string, price string, stock int) int64 {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/products", adminToken, gin.H{"name": "Masala Dosa", "price": price, "stock_quantity": stock, "tags": []string{"breakfast"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return int64(decode(t, rec)["id"].(float64))
}

func TestRouter_CheckoutFlow(t *testing.T) {
	s := newTestServer(t, nil)
	adminToken := s.admin(t)
	productID := s.product(t, adminToken, "60", 5)
	alice := s.signUp(t, "alice@campus.edu")

	rec := s.do(t, http.MethodPost, "/cart/add", alice, gin.H{"product_id": productID, "quantity": 3})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "180", decode(t, rec)["total"])

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/products/%d", productID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode(t, rec)["stock_quantity"])

	rec = s.do(t, http.MethodPost, "/cart/checkout", alice, gin.H{"payment_method": "upi"}, IdempotencyKeyHeader, "tray-42")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	placed := decode(t, rec)
	assert.Equal(t, "Order placed successfully", placed["message"])
	assert.Equal(t, "180", placed["total_amount"])
	assert.Equal(t, false, placed["replayed"])
	orderID := int64(placed["order_id"].(float64))
	payment := placed["payment"].(map[string]any)
	assert.Equal(t, "pending", payment["status"])

	rec = s.do(t, http.MethodPost, "/cart/checkout", alice, gin.H{"payment_method": "upi"}, IdempotencyKeyHeader, "tray-42")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	replay := decode(t, rec)
	assert.Equal(t, true, replay["replayed"])
	assert.EqualValues(t, orderID, replay["order_id"])

	rec = s.do(t, http.MethodPost, "/cart/checkout", alice, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, apierrors.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))

	rec = s.do(t, http.MethodGet, "/orders", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)

	paymentID := int64(payment["id"].(float64))
	rec = s.do(t, http.MethodPut, fmt.Sprintf("/payments/%d", paymentID), alice, gin.H{"status": "paid", "transaction_id": "upi-991"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "paid", decode(t, rec)["payment_status"])

	assert.Len(t, s.events.All(context.Background()), 2)
}

func TestRouter_InsufficientStockIsConflict(t *testing.T) {
	s := newTestServer(t, nil)
	adminToken := s.admin(t)
	productID := s.product(t, adminToken, "50", 5)
	alice := s.signUp(t, "alice@campus.edu")
	bob := s.signUp(t, "bob@campus.edu")

	rec := s.do(t, http.MethodPost, "/cart/add", alice, gin.H{"product_id": productID, "quantity": 3})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/cart/add", bob, gin.H{"product_id": productID, "quantity": 3})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apierrors.TypeInsufficient, decode(t, rec)["type"])
}

func TestRouter_Authorization(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.signUp(t, "alice@campus.edu")

	rec := s.do(t, http.MethodGet, "/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/cart", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/users", alice, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/products", alice, gin.H{"name": "Idli", "price": "30", "stock_quantity": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/signout", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/cart", alice, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AdminSignupNeedsSecret(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodPost, "/admin_signup", "", gin.H{"email": "x@campus.edu", "password": "kitchen1", "secretKey": "guess"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminToken := s.admin(t)
	s.signUp(t, "alice@campus.edu")
	rec = s.do(t, http.MethodGet, "/users", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 2)
	for _, u := range users {
		assert.NotContains(t, u, "password_hash")
	}
}

func TestRouter_ProductQueries(t *testing.T) {
	s := newTestServer(t, nil)
	adminToken := s.admin(t)
	s.product(t, adminToken, "60", 5)

	rec := s.do(t, http.MethodGet, "/products?tag=breakfast&in_stock=true", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var products []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	assert.Len(t, products, 1)

	rec = s.do(t, http.MethodGet, "/products?limit=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/products/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/products/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t, map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
	})
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])

	s = newTestServer(t, map[string]HealthCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	rec = s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", decode(t, rec)["status"])
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", token)

	_, ok = bearerToken("Basic Zm9v")
	assert.False(t, ok)
	_, ok = bearerToken("Bearer ")
	assert.False(t, ok)
}
