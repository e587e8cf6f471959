package observability

import (
	"testing"

	"github.com/smallbiznis/crm/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("DEPLOYMENT_ENV", "")

	cfg := LoadConfig(config.Config{AppName: "", Environment: "production", AppVersion: "1.2.3", OTLPEndpoint: "collector:4317"})
	assert.Equal(t, "crm", cfg.ServiceName)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "collector:4317", cfg.OtelExporterEndpoint)
	assert.False(t, cfg.OtelEnabled)
	assert.False(t, cfg.Debug())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", " DEBUG ")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "HTTP")
	t.Setenv("OTEL_SAMPLING_RATIO", "0.5")

	cfg := LoadConfig(config.Config{AppName: "crm-api", Environment: "production"})
	assert.Equal(t, "crm-api", cfg.ServiceName)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.OtelEnabled)
	assert.Equal(t, "http", cfg.OtelExporterProtocol)
	assert.InDelta(t, 0.5, cfg.OtelSamplingRatio, 1e-9)

	assert.True(t, cfg.LoggerConfig().IncludeStackOnError)
	assert.Equal(t, "http", cfg.TracingConfig().ExporterProtocol)
	assert.True(t, cfg.MetricsConfig().Enabled)
}

func TestDebugInDevelopment(t *testing.T) {
	assert.True(t, Config{Environment: "development", LogLevel: "info"}.Debug())
	assert.True(t, Config{Environment: "production", LogLevel: "debug"}.Debug())
}
