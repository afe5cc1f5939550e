package application

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/canteen-api/internal/domains/catalog/adapters/memory"
	"github.com/Apurer/canteen-api/internal/domains/catalog/domain"
	"github.com/Apurer/canteen-api/internal/domains/catalog/ports"
	"github.com/Apurer/canteen-api/internal/platform/memdb"
	"github.com/Apurer/canteen-api/internal/shared/failure"
	"github.com/Apurer/canteen-api/internal/shared/principal"
)

var admin = principal.Principal{UserID: 1, Role: principal.RoleAdmin}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(memory.NewRepository(memdb.New()))
}

func seedProduct(t *testing.T, svc *Service, name string, stock int) *domain.Product {
	t.Helper()
	p, err := svc.UpsertProduct(context.Background(), admin, &domain.Product{
		Name:          name,
		Price:         decimal.NewFromInt(10),
		StockQuantity: stock,
	})
	require.NoError(t, err)
	return p
}

func TestUpsertProduct_RequiresAdmin(t *testing.T) {
	svc := newTestService(t)
	customer := principal.Principal{UserID: 2, Role: principal.RoleUser}

	_, err := svc.UpsertProduct(context.Background(), customer, &domain.Product{Name: "Tea", Price: decimal.NewFromInt(5)})
	require.ErrorIs(t, err, failure.ErrForbidden)
}

func TestUpsertProduct_ValidationMapsToKind(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.UpsertProduct(context.Background(), admin, &domain.Product{Name: "Tea", Price: decimal.Zero})
	require.ErrorIs(t, err, failure.ErrValidation)
	require.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestUpsertProduct_RejectsSubPaisePrice(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.UpsertProduct(context.Background(), admin, &domain.Product{Name: "Chai", Price: decimal.RequireFromString("12.345")})
	require.ErrorIs(t, err, failure.ErrValidation)
	require.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestUpsertProduct_UpdateMissing(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.UpsertProduct(context.Background(), admin, &domain.Product{ID: 42, Name: "Tea", Price: decimal.NewFromInt(5)})
	require.ErrorIs(t, err, failure.ErrNotFound)
}

func TestAdjustStock_NeverNegative(t *testing.T) {
	svc := newTestService(t)
	p := seedProduct(t, svc, "Dosa", 2)

	_, err := svc.AdjustStock(context.Background(), p.ID, -3)
	require.ErrorIs(t, err, failure.ErrInsufficientStock)

	got, err := svc.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.StockQuantity)

	_, err = svc.AdjustStock(context.Background(), 999, -1)
	require.ErrorIs(t, err, failure.ErrNotFound)
}

func TestAdjustStock_ConcurrentReservationsNeverOversell(t *testing.T) {
	svc := newTestService(t)
	p := seedProduct(t, svc, "Biryani", 10)

	var wg sync.WaitGroup
	var succeeded atomic.Int32
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AdjustStock(context.Background(), p.ID, -1); err == nil {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()

	got, err := svc.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(10), succeeded.Load())
	assert.Zero(t, got.StockQuantity)
}

func TestListProducts_Filters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.UpsertProduct(ctx, admin, &domain.Product{Name: "Masala Dosa", Price: decimal.NewFromInt(40), StockQuantity: 5, Tags: []string{"breakfast"}})
	require.NoError(t, err)
	_, err = svc.UpsertProduct(ctx, admin, &domain.Product{Name: "Lemon Rice", Description: "tangy", Price: decimal.NewFromInt(35), Tags: []string{"lunch"}})
	require.NoError(t, err)

	byQuery, err := svc.ListProducts(ctx, ports.ListFilter{Query: "DOSA"})
	require.NoError(t, err)
	require.Len(t, byQuery, 1)
	assert.Equal(t, "Masala Dosa", byQuery[0].Name)

	inStock, err := svc.ListProducts(ctx, ports.ListFilter{InStockOnly: true})
	require.NoError(t, err)
	assert.Len(t, inStock, 1)

	byTag, err := svc.ListProducts(ctx, ports.ListFilter{Tag: "lunch"})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "Lemon Rice", byTag[0].Name)

	paged, err := svc.ListProducts(ctx, ports.ListFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "Lemon Rice", paged[0].Name)
}
