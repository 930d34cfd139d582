package resilient_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nail-agent/nail/internal/engine/mock"
	"github.com/nail-agent/nail/internal/engine/resilient"
	"github.com/nail-agent/nail/internal/resilience"
)

func TestFallbackEnvironment_UsesPrimaryWhileHealthy(t *testing.T) {
	t.Parallel()

	primary := mock.New("you are in a room")
	fallback := mock.New("offline room")

	env := resilient.NewFallback(primary, "primary", resilience.CircuitBreakerConfig{}, fallback, "mock")

	obs, err := env.Reset(context.Background())
	if err != nil {
		t.Fatalf("Reset: unexpected error: %v", err)
	}
	if obs != "you are in a room" {
		t.Errorf("Reset obs = %q, want the primary's", obs)
	}
	if fallback.ResetCalls != 0 {
		t.Errorf("fallback was consulted despite a healthy primary")
	}
}

func TestFallbackEnvironment_FallsBackOncePrimaryBreakerOpens(t *testing.T) {
	t.Parallel()

	primary := mock.New("you are in a room")
	primary.StepError = errors.New("connection reset")
	fallback := mock.New("offline room")
	fallback.Script["look"] = mock.Transition{Obs: "an empty void"}

	env := resilient.NewFallback(primary, "primary", resilience.CircuitBreakerConfig{
		Name:         "primary",
		MaxFailures:  1,
		ResetTimeout: time.Hour,
	}, fallback, "mock")

	// First call trips the primary's breaker and fails over.
	obs, _, _, err := env.Step(context.Background(), "look")
	if err != nil {
		t.Fatalf("Step: unexpected error: %v", err)
	}
	if obs != "an empty void" {
		t.Errorf("Step obs = %q, want the fallback's", obs)
	}

	// The breaker is now open; subsequent calls should go straight to
	// the fallback without retrying the broken primary.
	callsBefore := len(primary.StepCalls)
	if _, _, _, err := env.Step(context.Background(), "look"); err != nil {
		t.Fatalf("Step: unexpected error: %v", err)
	}
	if len(primary.StepCalls) != callsBefore {
		t.Errorf("primary was retried despite its open breaker")
	}
}

func TestFallbackEnvironment_CloseClosesEveryEntry(t *testing.T) {
	t.Parallel()

	primary := mock.New("start")
	fallback := mock.New("offline")

	env := resilient.NewFallback(primary, "primary", resilience.CircuitBreakerConfig{}, fallback, "mock")

	if err := env.Close(); err != nil {
		t.Fatalf("Close: unexpected error: %v", err)
	}
	if primary.CloseCalls != 1 {
		t.Errorf("primary CloseCalls = %d, want 1", primary.CloseCalls)
	}
	if fallback.CloseCalls != 1 {
		t.Errorf("fallback CloseCalls = %d, want 1", fallback.CloseCalls)
	}
}
