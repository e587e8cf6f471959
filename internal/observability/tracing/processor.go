package tracing

import (
	"context"

	obscontext "github.com/smallbiznis/crm/internal/observability/context"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// requestSpanProcessor stamps request and org identifiers on every span,
// including the database spans emitted below the HTTP span.
type requestSpanProcessor struct{}

func (requestSpanProcessor) OnStart(ctx context.Context, s sdktrace.ReadWriteSpan) {
	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		s.SetAttributes(attribute.String("request_id", requestID))
	}
	if orgID := obscontext.OrgIDFromContext(ctx); orgID != "" {
		s.SetAttributes(attribute.String("org_id", orgID))
	}
}

func (requestSpanProcessor) OnEnd(sdktrace.ReadOnlySpan) {}

func (requestSpanProcessor) Shutdown(context.Context) error { return nil }

func (requestSpanProcessor) ForceFlush(context.Context) error { return nil }
