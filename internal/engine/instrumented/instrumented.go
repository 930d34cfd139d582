// Package instrumented wraps an internal/engine.Environment so every
// Reset/Step round trip reports its latency, outcome, and errors to
// internal/observe, applying the same per-request middleware pattern
// at the environment-transport layer instead of the HTTP layer.
package instrumented

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/nail-agent/nail/internal/engine"
	"github.com/nail-agent/nail/internal/observe"
)

var _ engine.Environment = (*Environment)(nil)

// Environment decorates another Environment with observe.Metrics
// recording. transport is the label attached to every metric (e.g.
// "textenv", "mock").
type Environment struct {
	inner     engine.Environment
	metrics   *observe.Metrics
	transport string
}

// New wraps inner, recording metrics through m under the given
// transport label.
func New(inner engine.Environment, m *observe.Metrics, transport string) *Environment {
	return &Environment{inner: inner, metrics: m, transport: transport}
}

// Reset implements [engine.Environment].
func (e *Environment) Reset(ctx context.Context) (string, error) {
	ctx, span := observe.StartSpan(ctx, "environment.reset")
	defer span.End()

	start := time.Now()
	obs, err := e.inner.Reset(ctx)
	e.metrics.StepDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(observe.Attr("transport", e.transport), observe.Attr("op", "reset")))
	if err != nil {
		e.metrics.RecordEnvironmentError(ctx, e.transport)
		return "", err
	}
	return obs, nil
}

// Step implements [engine.Environment].
func (e *Environment) Step(ctx context.Context, command string) (string, int, bool, error) {
	ctx, span := observe.StartSpan(ctx, "environment.step")
	defer span.End()

	start := time.Now()
	obs, score, done, err := e.inner.Step(ctx, command)
	e.metrics.StepDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(observe.Attr("transport", e.transport), observe.Attr("op", "step")))

	status := "ok"
	if err != nil {
		status = "error"
		e.metrics.RecordEnvironmentError(ctx, e.transport)
	}
	e.metrics.RecordEnvironmentStep(ctx, e.transport, status)

	if err != nil {
		return "", 0, false, err
	}
	return obs, score, done, nil
}

// Close implements [engine.Environment].
func (e *Environment) Close() error {
	return e.inner.Close()
}
