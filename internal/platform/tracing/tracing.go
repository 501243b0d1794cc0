// Package tracing wraps the OpenTelemetry tracer used by services. With no
// SDK installed the global provider is a no-op, so spans cost nothing.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentation = "dvi"

// Start opens a span named "<component>.<op>".
func Start(ctx context.Context, component, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentation).Start(ctx, component+"."+op, trace.WithAttributes(attrs...))
}

// End records err on the span (if any) and ends it. Call as
// `defer func() { tracing.End(span, err) }()` with a named error result.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
