package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/Apurer/canteen-api/internal/platform/outbox"
)

// Config carries environment-driven settings for the canteen processes.
type Config struct {
	Port              string
	PostgresDSN       string
	RedisURL          string
	KafkaBrokers      []string
	KafkaTopic        string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	JWTSecret         string
	TokenTTL          time.Duration
	AdminSecretKey    string
	CartReservation   time.Duration
	OutboxInterval    time.Duration
	DefaultCurrency   string
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisURL:          strings.TrimSpace(os.Getenv("REDIS_URL")),
		KafkaBrokers:      outbox.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:        envDefault("KAFKA_TOPIC", "canteen.events"),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		JWTSecret:         strings.TrimSpace(os.Getenv("JWT_SECRET")),
		AdminSecretKey:    strings.TrimSpace(os.Getenv("ADMIN_SECRET_KEY")),
		DefaultCurrency:   strings.ToUpper(envDefault("DEFAULT_CURRENCY", "INR")),
	}
	var err error
	if cfg.TokenTTL, err = positiveDuration("TOKEN_TTL_HOURS", 24, time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.CartReservation, err = positiveDuration("CART_RESERVATION_TTL_MINUTES", 30, time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.OutboxInterval, err = positiveDuration("OUTBOX_POLL_INTERVAL_SECONDS", 5, time.Second); err != nil {
		return Config{}, err
	}
	if cfg.JWTSecret != "" && len(cfg.JWTSecret) < 16 {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least 16 bytes")
	}
	if len(cfg.DefaultCurrency) != 3 {
		return Config{}, fmt.Errorf("DEFAULT_CURRENCY must be a three letter code")
	}
	return cfg, nil
}

func positiveDuration(key string, fallback int, unit time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return time.Duration(fallback) * unit, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return time.Duration(value) * unit, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
