package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	billingSummaries  metric.Int64Counter
	billingAnomalies  metric.Int64Counter
	billingItems      metric.Int64Histogram
	quoteRecalculated metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(15*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "crm"
	}
	meter := provider.Meter(name)

	billingSummaries, err := meter.Int64Counter("crm_billing_summaries_total")
	if err != nil {
		return nil, err
	}
	billingAnomalies, err := meter.Int64Counter("crm_billing_anomalies_total")
	if err != nil {
		return nil, err
	}
	billingItems, err := meter.Int64Histogram("crm_billing_summary_items")
	if err != nil {
		return nil, err
	}
	quoteRecalculated, err := meter.Int64Counter("crm_quote_recalculations_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		billingSummaries:  billingSummaries,
		billingAnomalies:  billingAnomalies,
		billingItems:      billingItems,
		quoteRecalculated: quoteRecalculated,
	}, nil
}

// NewNoop returns instruments bound to a no-op provider; useful in tests.
func NewNoop() *Metrics {
	m, _ := New(Config{}, noop.NewMeterProvider())
	return m
}

// RecordBillingSummary counts a computed summary and its size.
func (m *Metrics) RecordBillingSummary(ctx context.Context, orgID, billingType string, items int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(FilterAttributes(
		attribute.String("org_id", strings.TrimSpace(orgID)),
		attribute.String("billing_type", strings.TrimSpace(billingType)),
	)...)
	m.billingSummaries.Add(ctx, 1, attrs)
	m.billingItems.Record(ctx, int64(items), attrs)
}

// RecordBillingAnomaly counts an item that was clamped during calculation.
func (m *Metrics) RecordBillingAnomaly(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.billingAnomalies.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordQuoteRecalculation counts a quote totals recomputation.
func (m *Metrics) RecordQuoteRecalculation(ctx context.Context, trigger string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("trigger", strings.TrimSpace(trigger)))
	m.quoteRecalculated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"org_id":       {},
	"billing_type": {},
	"reason":       {},
	"trigger":      {},
	"route":        {},
	"status_code":  {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
