package observability

import (
	"github.com/smallbiznis/crm/internal/observability/logger"
	"github.com/smallbiznis/crm/internal/observability/metrics"
	"github.com/smallbiznis/crm/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

// Module provides the zap logger, the tracer and meter providers, the
// domain instruments and the Prometheus HTTP collectors.
var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		Config.LoggerConfig,
		Config.TracingConfig,
		Config.MetricsConfig,
	),
	fx.Provide(
		logger.New,
		tracing.NewProvider,
		metrics.NewProvider,
		metrics.New,
		metrics.NewHTTPMetrics,
	),
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)
