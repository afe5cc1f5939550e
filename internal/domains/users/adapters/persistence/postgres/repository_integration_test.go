//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/canteen-api/internal/domains/users/domain"
	"github.com/Apurer/canteen-api/internal/domains/users/ports"
	"github.com/Apurer/canteen-api/internal/platform/migrations"
	"github.com/Apurer/canteen-api/internal/shared/failure"
	"github.com/Apurer/canteen-api/internal/shared/principal"
)

func setupUsersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
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

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func TestRepository_CreateAndLookup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	user, err := domain.NewUser("Alice", "alice@example.com", "1234")
	require.NoError(t, err)
	user.PasswordHash = "hash"

	created, err := repo.Create(ctx, user)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	byEmail, err := repo.GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, principal.RoleUser, byEmail.Role)

	_, err = repo.Create(ctx, user)
	require.ErrorIs(t, err, failure.ErrConflict)

	promoted, err := repo.UpdateRole(ctx, created.ID, principal.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, principal.RoleAdmin, promoted.Role)

	_, err = repo.GetByID(ctx, 999)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSessionStore_SaveGetPurge(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	store := NewSessionStore(db)
	ctx := context.Background()

	user, err := domain.NewUser("Bob", "bob@example.com", "")
	require.NoError(t, err)
	user.PasswordHash = "hash"
	created, err := repo.Create(ctx, user)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.Save(ctx, domain.Session{ID: "live", UserID: created.ID, ExpiresAt: now.Add(time.Hour), CreatedAt: now}))
	require.NoError(t, store.Save(ctx, domain.Session{ID: "stale", UserID: created.ID, ExpiresAt: now.Add(-time.Hour), CreatedAt: now}))

	got, err := store.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.UserID)

	purged, err := store.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = store.Get(ctx, "stale")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, "live"))
	_, err = store.Get(ctx, "live")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
}
