package observe

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope name for the tracer.
const tracerName = "github.com/SwarupShekhar/ENGAPP"

// Tracer returns the package-level [trace.Tracer]. It uses the globally
// registered [trace.TracerProvider].
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartSpan starts a new span and returns the updated context and span.
// The caller must call span.End() when done.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// AssessmentAttrs returns the span attributes recorded on a completed
// assessment: the result ID, the final CEFR level, and whether the
// result came from the all-analyzers-failed neutral fallback.
func AssessmentAttrs(id, level string, fallback bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("assessment.id", id),
		attribute.String("assessment.level", level),
		attribute.Bool("assessment.fallback", fallback),
	}
}

// Logger returns an [slog.Logger] enriched with trace_id and span_id
// from the OTel span context in ctx. When no active span is present,
// the returned logger is the default slog logger without extra
// attributes.
func Logger(ctx context.Context) *slog.Logger {
	l := slog.Default()
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		l = l.With(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return l
}
