package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nail-agent/nail/internal/engine"
	"github.com/nail-agent/nail/internal/event"
	"github.com/nail-agent/nail/internal/kg"
	"github.com/nail-agent/nail/internal/validity"
)

// Arbiter is the single-threaded driver loop: it elects the most eager
// registered module each turn, pumps its step-based state machine, and
// submits the resulting commands to the environment.
//
// Structured the way an orchestrator struct typically is (functional-
// option constructor) except that a
// mutex-guarded registration map is unnecessary here, since modules
// never change after construction.
type Arbiter struct {
	modules    []Module
	graph      *kg.KnowledgeGraph
	bus        *event.Bus
	env        engine.Environment
	classifier validity.Classifier
	logger     *slog.Logger

	active     Module
	firstTurn  bool
	stepsTaken int
	onStep     func(score int, done bool)
}

// Option configures an Arbiter at construction time.
type Option func(*Arbiter)

// WithLogger overrides the arbiter's structured logger. Defaults to
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *Arbiter) { a.logger = l }
}

// WithOnStep registers a callback invoked after every completed turn
// with the environment's reported score and terminal flag, e.g. to
// feed internal/session.Manager.RecordStep.
func WithOnStep(fn func(score int, done bool)) Option {
	return func(a *Arbiter) { a.onStep = fn }
}

// New constructs an Arbiter. modules are registered in the given
// order; eagerness ties resolve to the later module in this slice.
func New(graph *kg.KnowledgeGraph, bus *event.Bus, env engine.Environment, classifier validity.Classifier, modules []Module, opts ...Option) *Arbiter {
	a := &Arbiter{
		modules:    modules,
		graph:      graph,
		bus:        bus,
		env:        env,
		classifier: classifier,
		logger:     slog.Default(),
		firstTurn:  true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// StepsTaken returns the number of turns completed so far.
func (a *Arbiter) StepsTaken() int { return a.stepsTaken }

// Run drives the environment for up to maxSteps turns, or until ctx is
// cancelled. It returns the first non-recoverable error encountered.
func (a *Arbiter) Run(ctx context.Context, maxSteps int) error {
	obs, err := a.env.Reset(ctx)
	if err != nil {
		return fmt.Errorf("arbiter: reset environment: %w", err)
	}

	a.graph.Lock()
	if a.graph.PlayerLocation() == nil {
		loc, _ := a.graph.AddLocation(kg.NewLocation(obs))
		a.graph.SetPlayerLocation(loc)
	}
	a.graph.Unlock()

	for a.stepsTaken < maxSteps {
		if err := ctx.Err(); err != nil {
			return err
		}

		var command string
		if a.firstTurn {
			command = "look"
			a.firstTurn = false
		} else {
			a.graph.Lock()
			command, err = a.nextCommand(ctx, obs)
			a.graph.Unlock()
			if err != nil {
				return err
			}
		}

		newObs, score, done, err := a.env.Step(ctx, command)
		if err != nil {
			return fmt.Errorf("arbiter: step environment: %w", err)
		}
		a.stepsTaken++

		// The graph is locked for the remainder of this turn's
		// bookkeeping so a concurrently running introspection server
		// (see internal/mcpintrospect, started under --serve) never
		// observes a partially updated graph.
		a.graph.Lock()
		a.bus.Push(event.NewTransition{Obs: obs, Action: command, Score: score, NewObs: newObs, Terminal: done})
		if recognized, word := validity.ActionRecognized(command, newObs); !recognized && word != "" {
			a.graph.MarkUnrecognized(word)
		}

		a.logger.Debug("turn complete", "command", command, "score", score, "terminal", done, "step", a.stepsTaken)

		obs = newObs
		if done {
			a.graph.Reset()
			a.active = nil
		}
		a.graph.Unlock()

		if a.onStep != nil {
			a.onStep(score, done)
		}
	}
	return nil
}

// nextCommand drains pending events into every module, elects (or
// continues) the active module, and pumps it until it yields a
// command.
func (a *Arbiter) nextCommand(ctx context.Context, lastObs string) (string, error) {
	for {
		a.drainEvents()

		if a.active == nil {
			a.active = a.elect()
			a.logger.Debug("module elected", "module", a.active.Name(), "eagerness", a.active.Eagerness())
		}

		result, err := a.active.Step(lastObs)
		if err != nil {
			return "", fmt.Errorf("arbiter: module %s step: %w", a.active.Name(), err)
		}
		if result.Done {
			a.active = nil
			continue
		}
		return result.Action.Text(), nil
	}
}

// drainEvents delivers every event queued since the last tick to every
// module, in the order they were queued, then clears the queue.
func (a *Arbiter) drainEvents() {
	events := a.bus.Drain()
	for _, e := range events {
		for _, m := range a.modules {
			m.ProcessEvent(e)
		}
	}
	a.bus.Clear()
}

// elect picks the module with the greatest eagerness. Ties resolve to
// the later module in registration order, because the running
// comparison is ≥.
func (a *Arbiter) elect() Module {
	var best Module
	bestEagerness := -1.0
	for _, m := range a.modules {
		e := m.Eagerness()
		if e >= bestEagerness {
			bestEagerness = e
			best = m
		}
	}
	return best
}
