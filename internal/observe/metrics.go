// Package observe provides application-wide observability primitives for
// nail: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all nail metrics.
const meterName = "github.com/nail-agent/nail"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// StepDuration tracks environment round-trip latency (one command, one
	// observation).
	StepDuration metric.Float64Histogram

	// NgramQueryDuration tracks n-gram language model scoring latency.
	NgramQueryDuration metric.Float64Histogram

	// ValidityQueryDuration tracks validity classifier inference latency.
	ValidityQueryDuration metric.Float64Histogram

	// ModuleStepDuration tracks a single decision module's Step() latency.
	ModuleStepDuration metric.Float64Histogram

	// --- Counters ---

	// EnvironmentSteps counts environment step calls. Use with attributes:
	//   attribute.String("transport", ...), attribute.String("status", ...)
	EnvironmentSteps metric.Int64Counter

	// ModuleSelections counts how often each module is elected by the
	// arbiter. Use with attribute:
	//   attribute.String("module", ...)
	ModuleSelections metric.Int64Counter

	// ActionOutcomes counts recorded action outcomes by module. Use with
	// attributes:
	//   attribute.String("module", ...), attribute.String("outcome", ...)
	ActionOutcomes metric.Int64Counter

	// --- Error counters ---

	// EnvironmentErrors counts environment transport errors. Use with
	// attribute:
	//   attribute.String("transport", ...)
	EnvironmentErrors metric.Int64Counter

	// --- Gauges ---

	// KnownLocations tracks the number of locations discovered so far in the
	// knowledge graph.
	KnownLocations metric.Int64UpDownCounter

	// KnownEntities tracks the number of entities discovered so far in the
	// knowledge graph.
	KnownEntities metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for a single environment round trip or classifier query.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.StepDuration, err = m.Float64Histogram("nail.step.duration",
		metric.WithDescription("Latency of a single environment step."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.NgramQueryDuration, err = m.Float64Histogram("nail.ngram.query.duration",
		metric.WithDescription("Latency of n-gram language model scoring."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ValidityQueryDuration, err = m.Float64Histogram("nail.validity.query.duration",
		metric.WithDescription("Latency of validity classifier inference."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ModuleStepDuration, err = m.Float64Histogram("nail.module.step.duration",
		metric.WithDescription("Latency of a single decision module's Step call."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.EnvironmentSteps, err = m.Int64Counter("nail.environment.steps",
		metric.WithDescription("Total environment step calls by transport and status."),
	); err != nil {
		return nil, err
	}
	if met.ModuleSelections, err = m.Int64Counter("nail.module.selections",
		metric.WithDescription("Total arbiter elections by module name."),
	); err != nil {
		return nil, err
	}
	if met.ActionOutcomes, err = m.Int64Counter("nail.action.outcomes",
		metric.WithDescription("Total recorded action outcomes by module and outcome."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.EnvironmentErrors, err = m.Int64Counter("nail.environment.errors",
		metric.WithDescription("Total environment transport errors by transport."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.KnownLocations, err = m.Int64UpDownCounter("nail.known_locations",
		metric.WithDescription("Number of locations discovered in the knowledge graph."),
	); err != nil {
		return nil, err
	}
	if met.KnownEntities, err = m.Int64UpDownCounter("nail.known_entities",
		metric.WithDescription("Number of entities discovered in the knowledge graph."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("nail.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
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

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
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

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordEnvironmentStep is a convenience method that records an environment
// step counter increment with the standard attribute set.
func (m *Metrics) RecordEnvironmentStep(ctx context.Context, transport, status string) {
	m.EnvironmentSteps.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("transport", transport),
			attribute.String("status", status),
		),
	)
}

// RecordModuleSelection is a convenience method that records a module
// election counter increment.
func (m *Metrics) RecordModuleSelection(ctx context.Context, module string) {
	m.ModuleSelections.Add(ctx, 1,
		metric.WithAttributes(attribute.String("module", module)),
	)
}

// RecordActionOutcome is a convenience method that records an action outcome
// counter increment with the standard attribute set.
func (m *Metrics) RecordActionOutcome(ctx context.Context, module, outcome string) {
	m.ActionOutcomes.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("module", module),
			attribute.String("outcome", outcome),
		),
	)
}

// RecordEnvironmentError is a convenience method that records an environment
// error counter increment.
func (m *Metrics) RecordEnvironmentError(ctx context.Context, transport string) {
	m.EnvironmentErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("transport", transport)),
	)
}
