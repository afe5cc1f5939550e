package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/canteen-api/internal/app/api"
	platformobservability "github.com/Apurer/canteen-api/internal/platform/observability"
)

func staticConfig(cfg api.Config) configLoader {
	return func() (api.Config, error) { return cfg, nil }
}

func TestRun_ClosesConnectionsWhenHousekeepingAborts(t *testing.T) {
	cleaned := 0
	build := func(context.Context, api.Config, *platformobservability.Instruments) (*api.Services, func(), error) {
		return &api.Services{}, func() { cleaned++ }, nil
	}

	err := run(context.Background(), staticConfig(api.Config{PostgresDSN: "postgres://canteen@db/canteen"}), build)

	require.Error(t, err)
	assert.Equal(t, 1, cleaned)
}

func TestRun_RefusesInMemoryStore(t *testing.T) {
	built := false
	build := func(context.Context, api.Config, *platformobservability.Instruments) (*api.Services, func(), error) {
		built = true
		return &api.Services{}, func() {}, nil
	}

	err := run(context.Background(), staticConfig(api.Config{}), build)

	require.ErrorIs(t, err, errNoPostgres)
	assert.False(t, built)
}

func TestRun_ReportsConfigErrors(t *testing.T) {
	bad := func() (api.Config, error) { return api.Config{}, errors.New("JWT_SECRET too short") }

	err := run(context.Background(), bad, nil)

	require.ErrorContains(t, err, "invalid configuration")
}
