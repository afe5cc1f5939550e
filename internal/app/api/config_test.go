package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "POSTGRES_DSN", "REDIS_URL", "KAFKA_BROKERS", "KAFKA_TOPIC", "TEMPORAL_DISABLED",
		"JWT_SECRET", "TOKEN_TTL_HOURS", "ADMIN_SECRET_KEY", "CART_RESERVATION_TTL_MINUTES", "OUTBOX_POLL_INTERVAL_SECONDS", "DEFAULT_CURRENCY"} {
		t.Setenv(key, "")
	}
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "canteen.events", cfg.KafkaTopic)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 30*time.Minute, cfg.CartReservation)
	assert.Equal(t, 5*time.Second, cfg.OutboxInterval)
	assert.Equal(t, "INR", cfg.DefaultCurrency)
	assert.False(t, cfg.TemporalDisabled)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("TEMPORAL_DISABLED", "true")
	t.Setenv("TOKEN_TTL_HOURS", "2")
	t.Setenv("CART_RESERVATION_TTL_MINUTES", "15")
	t.Setenv("DEFAULT_CURRENCY", "usd")
	t.Setenv("JWT_SECRET", "0123456789abcdef")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.TemporalDisabled)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 15*time.Minute, cfg.CartReservation)
	assert.Equal(t, "USD", cfg.DefaultCurrency)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"TOKEN_TTL_HOURS":              "0",
		"OUTBOX_POLL_INTERVAL_SECONDS": "soon",
		"JWT_SECRET":                   "short",
		"DEFAULT_CURRENCY":             "RUPEE",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
