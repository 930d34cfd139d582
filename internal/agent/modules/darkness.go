package modules

import (
	"strings"

	"github.com/nail-agent/nail/internal/action"
	"github.com/nail-agent/nail/internal/agent"
	"github.com/nail-agent/nail/internal/event"
	"github.com/nail-agent/nail/internal/kg"
	"github.com/nail-agent/nail/internal/validity"
)

// darknessMarkers are the case-sensitive substrings that indicate the
// player is somewhere too dark to act.
var darknessMarkers = []string{"pitch black", "too dark to see"}

// Darkness reacts to the game reporting the player is somewhere too
// dark to act by turning on a light source.
type Darkness struct {
	recorder

	graph      *kg.KnowledgeGraph
	classifier validity.Classifier

	eager    bool
	awaiting bool
}

// NewDarkness constructs a Darkness module.
func NewDarkness(g *kg.KnowledgeGraph, classifier validity.Classifier) *Darkness {
	return &Darkness{graph: g, classifier: classifier}
}

// Name implements [agent.Module].
func (n *Darkness) Name() string { return "darkness" }

// ProcessEvent implements [agent.Module].
func (n *Darkness) ProcessEvent(evt event.Event) {
	t, ok := evt.(event.NewTransition)
	if !ok {
		return
	}
	for _, marker := range darknessMarkers {
		if strings.Contains(t.NewObs, marker) {
			n.eager = true
			return
		}
	}
}

// Eagerness implements [agent.Module].
func (n *Darkness) Eagerness() float64 {
	if n.eager {
		return 1
	}
	return 0
}

// Step implements [agent.Module].
func (n *Darkness) Step(response string) (agent.StepResult, error) {
	const verb = "turn on"
	if !n.awaiting {
		n.awaiting = true
		return agent.StepResult{Action: action.Standalone{Verb: verb}}, nil
	}

	n.awaiting = false
	n.eager = false
	p, err := validity.ActionValid(n.classifier, verb, response, n.graph.MarkUnrecognized)
	if err != nil {
		return agent.StepResult{}, err
	}
	n.Record(p > 0.5)
	if loc := n.graph.PlayerLocation(); loc != nil {
		n.graph.RecordLocationAction(loc, verb, p, response)
	}
	return agent.StepResult{Done: true}, nil
}
