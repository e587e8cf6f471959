package tracing

import (
	"context"
	"testing"

	obscontext "github.com/smallbiznis/crm/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestRequestSpanProcessorStampsIdentifiers(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(requestSpanProcessor{}),
		sdktrace.WithSpanProcessor(recorder),
	)

	ctx := obscontext.WithRequestID(context.Background(), "req-42")
	ctx = obscontext.WithOrgID(ctx, "1001")
	_, span := provider.Tracer("test").Start(ctx, "billing.summary")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := spans[0].Attributes()
	assert.Contains(t, attrs, attribute.String("request_id", "req-42"))
	assert.Contains(t, attrs, attribute.String("org_id", "1001"))
}

func TestSafeAttributesDropsUnknownKeys(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/companies/:id"),
		attribute.String("email", "jane@acme.io"),
	)
	require.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("http.route"), attrs[0].Key)
}
