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

func TestEnvironment_PassesThroughOnSuccess(t *testing.T) {
	t.Parallel()

	inner := mock.New("you are in a room")
	inner.Script["go north"] = mock.Transition{Obs: "a hallway", Score: 1}

	env := resilient.New(inner, resilience.CircuitBreakerConfig{})

	obs, err := env.Reset(context.Background())
	if err != nil {
		t.Fatalf("Reset: unexpected error: %v", err)
	}
	if obs != "you are in a room" {
		t.Errorf("Reset obs = %q", obs)
	}

	obs, score, done, err := env.Step(context.Background(), "go north")
	if err != nil {
		t.Fatalf("Step: unexpected error: %v", err)
	}
	if obs != "a hallway" || score != 1 || done {
		t.Errorf("Step = (%q, %d, %v)", obs, score, done)
	}
}

func TestEnvironment_OpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	inner := mock.New("start")
	inner.StepError = errors.New("connection reset")

	env := resilient.New(inner, resilience.CircuitBreakerConfig{
		Name:         "test",
		MaxFailures:  2,
		ResetTimeout: time.Hour,
	})

	for i := 0; i < 2; i++ {
		if _, _, _, err := env.Step(context.Background(), "look"); err == nil {
			t.Fatalf("Step %d: expected error", i)
		}
	}

	// The breaker should now be open, short-circuiting before the
	// inner environment is even called.
	callsBefore := len(inner.StepCalls)
	if _, _, _, err := env.Step(context.Background(), "look"); err == nil {
		t.Fatal("expected error once breaker is open")
	}
	if len(inner.StepCalls) != callsBefore {
		t.Error("inner environment was called despite the open breaker")
	}
}

func TestEnvironment_CloseDelegatesToInner(t *testing.T) {
	t.Parallel()

	inner := mock.New("start")
	env := resilient.New(inner, resilience.CircuitBreakerConfig{})

	if err := env.Close(); err != nil {
		t.Fatalf("Close: unexpected error: %v", err)
	}
	if inner.CloseCalls != 1 {
		t.Errorf("CloseCalls = %d, want 1", inner.CloseCalls)
	}
}
