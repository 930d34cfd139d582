package modules

import (
	"github.com/nail-agent/nail/internal/action"
	"github.com/nail-agent/nail/internal/agent"
	"github.com/nail-agent/nail/internal/event"
	"github.com/nail-agent/nail/internal/kg"
)

const defaultRestartSentinel = "restart"

// Restart reacts to a death or restart banner by issuing the
// environment's restart sentinel and resetting the knowledge graph to
// its post-init state.
type Restart struct {
	recorder

	graph    *kg.KnowledgeGraph
	sentinel string

	eager    bool
	awaiting bool
}

// RestartOption configures a Restart module at construction time.
type RestartOption func(*Restart)

// WithRestartSentinel overrides the command text submitted to restart
// the game. Defaults to "restart".
func WithRestartSentinel(sentinel string) RestartOption {
	return func(r *Restart) { r.sentinel = sentinel }
}

// NewRestart constructs a Restart module.
func NewRestart(g *kg.KnowledgeGraph, opts ...RestartOption) *Restart {
	r := &Restart{graph: g, sentinel: defaultRestartSentinel}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name implements [agent.Module].
func (n *Restart) Name() string { return "restart" }

// ProcessEvent implements [agent.Module].
func (n *Restart) ProcessEvent(evt event.Event) {
	t, ok := evt.(event.NewTransition)
	if !ok {
		return
	}
	if t.Terminal || containsDeathMarkers(t.NewObs) {
		n.eager = true
	}
}

// Eagerness implements [agent.Module].
func (n *Restart) Eagerness() float64 {
	if n.eager {
		return 1
	}
	return 0
}

// Step implements [agent.Module].
func (n *Restart) Step(response string) (agent.StepResult, error) {
	if !n.awaiting {
		n.awaiting = true
		return agent.StepResult{Action: action.Standalone{Verb: n.sentinel}}, nil
	}

	n.awaiting = false
	n.eager = false
	n.Record(true)
	n.graph.Reset()
	return agent.StepResult{Done: true}, nil
}
