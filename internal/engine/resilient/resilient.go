// Package resilient wraps an internal/engine.Environment with a
// circuit breaker, so a flapping game-host connection trips into the
// open state instead of letting every turn hang or error out
// individually, using internal/resilience.CircuitBreaker the same way
// an external provider call would be guarded; here the "provider"
// being protected is the single game-environment connection a
// playthrough owns.
package resilient

import (
	"context"
	"fmt"

	"github.com/nail-agent/nail/internal/engine"
	"github.com/nail-agent/nail/internal/resilience"
)

var _ engine.Environment = (*Environment)(nil)

// Environment decorates another Environment with a circuit breaker
// around Reset and Step.
type Environment struct {
	inner   engine.Environment
	breaker *resilience.CircuitBreaker
}

// New wraps inner with a circuit breaker configured per cfg. A zero
// cfg applies the breaker's documented defaults (5 consecutive
// failures, 30s reset timeout, 3 half-open probes).
func New(inner engine.Environment, cfg resilience.CircuitBreakerConfig) *Environment {
	if cfg.Name == "" {
		cfg.Name = "environment"
	}
	return &Environment{inner: inner, breaker: resilience.NewCircuitBreaker(cfg)}
}

// Reset implements [engine.Environment].
func (e *Environment) Reset(ctx context.Context) (string, error) {
	var obs string
	err := e.breaker.Execute(func() error {
		var innerErr error
		obs, innerErr = e.inner.Reset(ctx)
		return innerErr
	})
	if err != nil {
		return "", fmt.Errorf("resilient: reset: %w", err)
	}
	return obs, nil
}

// Step implements [engine.Environment].
func (e *Environment) Step(ctx context.Context, command string) (string, int, bool, error) {
	var obs string
	var score int
	var done bool
	err := e.breaker.Execute(func() error {
		var innerErr error
		obs, score, done, innerErr = e.inner.Step(ctx, command)
		return innerErr
	})
	if err != nil {
		return "", 0, false, fmt.Errorf("resilient: step: %w", err)
	}
	return obs, score, done, nil
}

// Close implements [engine.Environment].
func (e *Environment) Close() error {
	return e.inner.Close()
}
