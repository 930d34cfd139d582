package instrumented_test

import (
	"context"
	"errors"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/nail-agent/nail/internal/engine/instrumented"
	"github.com/nail-agent/nail/internal/engine/mock"
	"github.com/nail-agent/nail/internal/observe"
)

func newTestMetrics(t *testing.T) *observe.Metrics {
	t.Helper()
	mp := sdkmetric.NewMeterProvider()
	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m
}

func TestEnvironment_ResetPassesThroughObservation(t *testing.T) {
	t.Parallel()

	inner := mock.New("you are in a room")
	env := instrumented.New(inner, newTestMetrics(t), "mock")

	obs, err := env.Reset(context.Background())
	if err != nil {
		t.Fatalf("Reset: unexpected error: %v", err)
	}
	if obs != "you are in a room" {
		t.Errorf("Reset obs = %q", obs)
	}
}

func TestEnvironment_StepRecordsErrorsWithoutPanicking(t *testing.T) {
	t.Parallel()

	inner := mock.New("start")
	inner.StepError = errors.New("boom")
	env := instrumented.New(inner, newTestMetrics(t), "mock")

	if _, _, _, err := env.Step(context.Background(), "go north"); err == nil {
		t.Fatal("expected error to propagate")
	}
}

func TestEnvironment_CloseDelegatesToInner(t *testing.T) {
	t.Parallel()

	inner := mock.New("start")
	env := instrumented.New(inner, newTestMetrics(t), "mock")

	if err := env.Close(); err != nil {
		t.Fatalf("Close: unexpected error: %v", err)
	}
	if inner.CloseCalls != 1 {
		t.Errorf("CloseCalls = %d, want 1", inner.CloseCalls)
	}
}
