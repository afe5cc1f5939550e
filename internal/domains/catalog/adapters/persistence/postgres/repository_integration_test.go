//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/canteen-api/internal/domains/catalog/domain"
	"github.com/Apurer/canteen-api/internal/domains/catalog/ports"
	"github.com/Apurer/canteen-api/internal/platform/migrations"
	"github.com/Apurer/canteen-api/internal/shared/failure"
)

func setupCatalogPostgresContainer(t *testing.T) (*gorm.DB, func()) {
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

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

func TestRepository_SaveListDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupCatalogPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	discounted := decimal.RequireFromString("45.50")
	saved, err := repo.Save(ctx, &domain.Product{
		Name:            "Paneer Roll",
		Description:     "Grilled cottage cheese wrap",
		Price:           decimal.RequireFromString("55.00"),
		DiscountedPrice: &discounted,
		StockQuantity:   4,
		Tags:            []string{"snacks", "veg"},
	})
	require.NoError(t, err)
	require.NotZero(t, saved.ID)

	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("55")))
	require.NotNil(t, got.DiscountedPrice)
	assert.True(t, got.DiscountedPrice.Equal(discounted))
	assert.ElementsMatch(t, []string{"snacks", "veg"}, got.Tags)

	list, err := repo.List(ctx, ports.ListFilter{Query: "PANEER", Tag: "veg", InStockOnly: true})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = repo.List(ctx, ports.ListFilter{Tag: "drinks"})
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, repo.Delete(ctx, saved.ID))
	_, err = repo.Get(ctx, saved.ID)
	require.ErrorIs(t, err, failure.ErrNotFound)
}

func TestRepository_AdjustStockNeverOversells(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupCatalogPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	saved, err := repo.Save(ctx, &domain.Product{Name: "Filter Coffee", Price: decimal.RequireFromString("20"), StockQuantity: 10})
	require.NoError(t, err)

	const workers = 25
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AdjustStock(ctx, saved.ID, -1)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			assert.ErrorIs(t, err, failure.ErrInsufficientStock)
			rejected++
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, workers-10, rejected)
	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.StockQuantity)

	_, err = repo.AdjustStock(ctx, 9999, 1)
	require.ErrorIs(t, err, failure.ErrNotFound)
}
