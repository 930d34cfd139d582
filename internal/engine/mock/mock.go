// Package mock provides an in-memory scripted implementation of
// [engine.Environment] for unit tests, using a call-recording pattern:
// argument capture in exported Call slices, canned results in exported
// Result fields.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/nail-agent/nail/internal/engine"
)

// Compile-time interface assertion.
var _ engine.Environment = (*Environment)(nil)

// Transition is one scripted (response, score, done) triple returned
// for a given command.
type Transition struct {
	Obs   string
	Score int
	Done  bool
}

// Environment is a scripted in-memory environment. ResetObs is
// returned by Reset. Script maps a submitted command to the
// Transition it should produce; commands absent from Script return
// DefaultTransition.
type Environment struct {
	mu sync.Mutex

	ResetObs          string
	ResetError        error
	Script            map[string]Transition
	DefaultTransition Transition
	StepError         error
	CloseError        error

	ResetCalls int
	StepCalls  []string
	CloseCalls int
}

// New returns an Environment whose Reset() yields resetObs.
func New(resetObs string) *Environment {
	return &Environment{
		ResetObs: resetObs,
		Script:   make(map[string]Transition),
	}
}

// Reset implements [engine.Environment].
func (e *Environment) Reset(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ResetCalls++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return e.ResetObs, e.ResetError
}

// Step implements [engine.Environment].
func (e *Environment) Step(ctx context.Context, command string) (string, int, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.StepCalls = append(e.StepCalls, command)
	if err := ctx.Err(); err != nil {
		return "", 0, false, err
	}
	if e.StepError != nil {
		return "", 0, false, e.StepError
	}
	if t, ok := e.Script[command]; ok {
		return t.Obs, t.Score, t.Done, nil
	}
	return e.DefaultTransition.Obs, e.DefaultTransition.Score, e.DefaultTransition.Done, nil
}

// Close implements [engine.Environment].
func (e *Environment) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.CloseCalls++
	return e.CloseError
}

// LastCommand returns the most recently submitted command, or an
// error if Step has not been called yet.
func (e *Environment) LastCommand() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.StepCalls) == 0 {
		return "", fmt.Errorf("mock: Step has not been called")
	}
	return e.StepCalls[len(e.StepCalls)-1], nil
}
