package modules

import (
	"math/rand"
	"strings"

	"github.com/nail-agent/nail/internal/action"
	"github.com/nail-agent/nail/internal/agent"
	"github.com/nail-agent/nail/internal/event"
	"github.com/nail-agent/nail/internal/kg"
)

// yesNoMarkers are the case-insensitive substrings that indicate the
// game is waiting on a yes/no confirmation.
var yesNoMarkers = []string{"yes or n", "y/n", "(y or n)"}

// YesNo answers yes/no confirmation prompts with a uniform coin flip.
type YesNo struct {
	recorder

	graph *kg.KnowledgeGraph
	rng   *rand.Rand

	eager    bool
	awaiting bool
	pending  string
}

// NewYesNo constructs a YesNo module.
func NewYesNo(g *kg.KnowledgeGraph, rng *rand.Rand) *YesNo {
	if rng == nil {
		rng = rand.New(rand.NewSource(1010))
	}
	return &YesNo{graph: g, rng: rng}
}

// Name implements [agent.Module].
func (n *YesNo) Name() string { return "yesno" }

// ProcessEvent implements [agent.Module].
func (n *YesNo) ProcessEvent(evt event.Event) {
	t, ok := evt.(event.NewTransition)
	if !ok {
		return
	}
	lower := strings.ToLower(t.NewObs)
	for _, marker := range yesNoMarkers {
		if strings.Contains(lower, marker) {
			n.eager = true
			return
		}
	}
}

// Eagerness implements [agent.Module].
func (n *YesNo) Eagerness() float64 {
	if n.eager {
		return 1
	}
	return 0
}

// Step implements [agent.Module].
func (n *YesNo) Step(response string) (agent.StepResult, error) {
	if !n.awaiting {
		choice := "no"
		if n.rng.Float64() < 0.5 {
			choice = "yes"
		}
		n.pending = choice
		n.awaiting = true
		return agent.StepResult{Action: action.Standalone{Verb: choice}}, nil
	}

	n.awaiting = false
	n.eager = false
	n.Record(true)
	if loc := n.graph.PlayerLocation(); loc != nil {
		n.graph.RecordLocationAction(loc, n.pending, 1.0, response)
	}
	return agent.StepResult{Done: true}, nil
}
