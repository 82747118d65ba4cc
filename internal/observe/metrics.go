// Package observe provides application-wide observability primitives:
// OpenTelemetry metrics, tracing helpers, and trace-enriched structured
// logging.
//
// Metrics are recorded through the OpenTelemetry Metrics API and
// exported through the Prometheus bridge set up by [InitProvider],
// which also serves the /metrics scrape endpoint when an address is
// configured. A package-level default [Metrics] instance
// ([DefaultMetrics]) is provided for convenience; tests should use
// [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all metrics.
const meterName = "github.com/SwarupShekhar/ENGAPP"

// Metrics holds all OpenTelemetry metric instruments for the assessment
// pipeline. All fields are safe for concurrent use — the underlying
// OTel types handle their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// AnalyzerDuration tracks per-analyzer latency. Use with attribute:
	//   attribute.String("analyzer", ...)
	AnalyzerDuration metric.Float64Histogram

	// VerificationDuration tracks correction verification latency.
	VerificationDuration metric.Float64Histogram

	// AssessmentDuration tracks end-to-end assessment latency.
	AssessmentDuration metric.Float64Histogram

	// --- Counters ---

	// Assessments counts completed assessments. Use with attribute:
	//   attribute.String("status", "ok"|"fallback")
	Assessments metric.Int64Counter

	// AnalyzerFailures counts analyzer fallbacks. Use with attributes:
	//   attribute.String("analyzer", ...), attribute.String("reason", ...)
	AnalyzerFailures metric.Int64Counter

	// CorrectionsDropped counts corrections rejected by verification.
	CorrectionsDropped metric.Int64Counter

	// ProviderRequests counts provider API calls. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...), attribute.String("status", ...)
	ProviderRequests metric.Int64Counter

	// ProviderErrors counts provider errors. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveAssessments tracks the number of in-flight assessments.
	ActiveAssessments metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized
// for model-backed analyzer calls.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15,
}

// NewMetrics creates a fully initialised [Metrics] struct using the
// given [metric.MeterProvider]. Returns an error if any instrument
// creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.AnalyzerDuration, err = m.Float64Histogram("engassess.analyzer.duration",
		metric.WithDescription("Latency of a single specialized analyzer."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.VerificationDuration, err = m.Float64Histogram("engassess.verification.duration",
		metric.WithDescription("Latency of the correction verification stage."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.AssessmentDuration, err = m.Float64Histogram("engassess.assessment.duration",
		metric.WithDescription("End-to-end assessment latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.Assessments, err = m.Int64Counter("engassess.assessments",
		metric.WithDescription("Total completed assessments by status."),
	); err != nil {
		return nil, err
	}
	if met.AnalyzerFailures, err = m.Int64Counter("engassess.analyzer.failures",
		metric.WithDescription("Total analyzer fallbacks by analyzer and reason."),
	); err != nil {
		return nil, err
	}
	if met.CorrectionsDropped, err = m.Int64Counter("engassess.corrections.dropped",
		metric.WithDescription("Total corrections rejected during verification."),
	); err != nil {
		return nil, err
	}
	if met.ProviderRequests, err = m.Int64Counter("engassess.provider.requests",
		metric.WithDescription("Total provider API requests by provider, kind, and status."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("engassess.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveAssessments, err = m.Int64UpDownCounter("engassess.active_assessments",
		metric.WithDescription("Number of in-flight assessments."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating
// it on first call using [otel.GetMeterProvider]. Subsequent calls
// return the same pointer. Panics if instrument creation fails (should
// not happen with the global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce
// verbosity at call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordAnalyzerFailure records an analyzer fallback with the standard
// attribute set.
func (m *Metrics) RecordAnalyzerFailure(ctx context.Context, analyzer, reason string) {
	m.AnalyzerFailures.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("analyzer", analyzer),
			attribute.String("reason", reason),
		),
	)
}

// RecordAssessment records a completed assessment by status.
func (m *Metrics) RecordAssessment(ctx context.Context, status string) {
	m.Assessments.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}

// RecordProviderRequest records a provider request with the standard
// attribute set.
func (m *Metrics) RecordProviderRequest(ctx context.Context, provider, kind, status string) {
	m.ProviderRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
			attribute.String("status", status),
		),
	)
}

// RecordProviderError records a provider error with the standard
// attribute set.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}
