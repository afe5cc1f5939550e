package observability

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", " collector:4318 ")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")

	cfg := ConfigFromEnv("canteen-api")
	assert.Equal(t, "canteen-api", cfg.ServiceName)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "collector:4318", cfg.OTLPEndpoint)
	assert.False(t, cfg.OTLPInsecure)
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("LOG_LEVEL", "loud")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "")

	cfg := ConfigFromEnv("worker")
	assert.Equal(t, "local", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.True(t, cfg.OTLPInsecure)
}

func TestNilInstrumentsFallBack(t *testing.T) {
	var i *Instruments
	assert.NotNil(t, i.Tracer("x"))
	assert.NotNil(t, i.Meter("x"))
}
