package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/canteen-api/internal/domains/catalog/adapters/memory"
	"github.com/Apurer/canteen-api/internal/domains/catalog/domain"
	"github.com/Apurer/canteen-api/internal/platform/memdb"
)

type countingRepo struct {
	*memory.Repository
	gets int
}

func (c *countingRepo) Get(ctx context.Context, id int64) (*domain.Product, error) {
	c.gets++
	return c.Repository.Get(ctx, id)
}

func setupCachedRepo(t *testing.T) (*Repository, *countingRepo, *memdb.DB, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	db := memdb.New()
	inner := &countingRepo{Repository: memory.NewRepository(db)}
	return New(inner, client), inner, db, mr
}

func TestGet_ReadThroughThenServedFromCache(t *testing.T) {
	repo, inner, _, mr := setupCachedRepo(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, &domain.Product{Name: "Filter Coffee", Price: decimal.RequireFromString("18.50"), StockQuantity: 4})
	require.NoError(t, err)

	first, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cacheKey(saved.ID)))
	assert.Greater(t, mr.TTL(cacheKey(saved.ID)).Seconds(), 0.0)

	second, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.gets)
	assert.Equal(t, first.Name, second.Name)
	assert.True(t, second.Price.Equal(decimal.RequireFromString("18.5")))
}

func TestAdjustStock_InvalidatesEntry(t *testing.T) {
	repo, _, _, mr := setupCachedRepo(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, &domain.Product{Name: "Vada", Price: decimal.NewFromInt(12), StockQuantity: 4})
	require.NoError(t, err)
	_, err = repo.Get(ctx, saved.ID)
	require.NoError(t, err)

	_, err = repo.AdjustStock(ctx, saved.ID, -1)
	require.NoError(t, err)
	assert.False(t, mr.Exists(cacheKey(saved.ID)))

	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.StockQuantity)
}

func TestGet_InsideTransactionBypassesCache(t *testing.T) {
	repo, inner, db, mr := setupCachedRepo(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, &domain.Product{Name: "Upma", Price: decimal.NewFromInt(25), StockQuantity: 1})
	require.NoError(t, err)

	err = db.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := repo.Get(ctx, saved.ID)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.gets)
	assert.False(t, mr.Exists(cacheKey(saved.ID)))
}

func TestGet_RedisDownFallsBackToRepository(t *testing.T) {
	repo, _, _, mr := setupCachedRepo(t)
	ctx := context.Background()
	saved, err := repo.Save(ctx, &domain.Product{Name: "Poha", Price: decimal.NewFromInt(20)})
	require.NoError(t, err)

	mr.Close()

	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Poha", got.Name)
}

func TestAdjustStock_InvalidatesAfterCommit(t *testing.T) {
	repo, _, db, mr := setupCachedRepo(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, &domain.Product{Name: "Idli", Price: decimal.NewFromInt(30), StockQuantity: 6})
	require.NoError(t, err)
	_, err = repo.Get(ctx, saved.ID)
	require.NoError(t, err)

	err = db.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := repo.AdjustStock(ctx, saved.ID, -2); err != nil {
			return err
		}
		// a reader racing the commit may refill the entry with the old row
		require.NoError(t, mr.Set(cacheKey(saved.ID), `{"id":1,"name":"Idli","price":"30","stock_quantity":6}`))
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cacheKey(saved.ID)))

	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.StockQuantity)
}

func TestAdjustStock_RollbackKeepsEntry(t *testing.T) {
	repo, _, db, mr := setupCachedRepo(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, &domain.Product{Name: "Lassi", Price: decimal.NewFromInt(40), StockQuantity: 3})
	require.NoError(t, err)
	_, err = repo.Get(ctx, saved.ID)
	require.NoError(t, err)

	err = db.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := repo.AdjustStock(ctx, saved.ID, -10)
		return err
	})
	require.Error(t, err)
	assert.True(t, mr.Exists(cacheKey(saved.ID)))
}
