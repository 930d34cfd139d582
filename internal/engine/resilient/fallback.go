package resilient

import (
	"context"
	"fmt"

	"github.com/nail-agent/nail/internal/engine"
	"github.com/nail-agent/nail/internal/resilience"
)

var _ engine.Environment = (*FallbackEnvironment)(nil)

// FallbackEnvironment decorates a primary Environment with automatic
// fallback to one or more backup Environments once the primary's own
// circuit breaker opens, using internal/resilience.FallbackGroup. This
// lets a flapping game-host connection fail over to an offline
// environment (e.g. internal/engine/mock) for the remainder of the
// playthrough instead of requiring the operator to restart with
// environment.transport set to mock.
type FallbackEnvironment struct {
	group *resilience.FallbackGroup[engine.Environment]
	all   []engine.Environment
}

// NewFallback wraps primary with cfg's circuit breaker as the group's
// first entry and registers fallback to be tried once primary's
// breaker opens or a call against it fails.
func NewFallback(primary engine.Environment, primaryName string, cfg resilience.CircuitBreakerConfig, fallback engine.Environment, fallbackName string) *FallbackEnvironment {
	if cfg.Name == "" {
		cfg.Name = primaryName
	}
	group := resilience.NewFallbackGroup(primary, primaryName, resilience.FallbackConfig{CircuitBreaker: cfg})
	group.AddFallback(fallbackName, fallback)
	return &FallbackEnvironment{group: group, all: []engine.Environment{primary, fallback}}
}

// Reset implements [engine.Environment].
func (e *FallbackEnvironment) Reset(ctx context.Context) (string, error) {
	obs, err := resilience.ExecuteWithResult(e.group, func(env engine.Environment) (string, error) {
		return env.Reset(ctx)
	})
	if err != nil {
		return "", fmt.Errorf("resilient: reset: %w", err)
	}
	return obs, nil
}

// stepResult bundles Step's three return values so ExecuteWithResult,
// which carries exactly one result type, can stand in for Step.
type stepResult struct {
	obs   string
	score int
	done  bool
}

// Step implements [engine.Environment].
func (e *FallbackEnvironment) Step(ctx context.Context, command string) (string, int, bool, error) {
	res, err := resilience.ExecuteWithResult(e.group, func(env engine.Environment) (stepResult, error) {
		obs, score, done, innerErr := env.Step(ctx, command)
		return stepResult{obs: obs, score: score, done: done}, innerErr
	})
	if err != nil {
		return "", 0, false, fmt.Errorf("resilient: step: %w", err)
	}
	return res.obs, res.score, res.done, nil
}

// Close implements [engine.Environment]. Every registered environment,
// primary and fallbacks alike, is closed; the first error encountered
// is returned only after every Close call has run.
func (e *FallbackEnvironment) Close() error {
	var firstErr error
	for _, env := range e.all {
		if err := env.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
