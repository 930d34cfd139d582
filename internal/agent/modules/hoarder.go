package modules

import (
	"strings"

	"github.com/nail-agent/nail/internal/action"
	"github.com/nail-agent/nail/internal/agent"
	"github.com/nail-agent/nail/internal/event"
	"github.com/nail-agent/nail/internal/kg"
	"github.com/nail-agent/nail/internal/validity"
)

// Hoarder issues a single `take all` whenever it arrives at a new
// location and parses the itemised response into per-entity Take
// action records.
type Hoarder struct {
	recorder

	graph      *kg.KnowledgeGraph
	classifier validity.Classifier

	eager    bool
	awaiting bool
}

// NewHoarder constructs a Hoarder.
func NewHoarder(g *kg.KnowledgeGraph, classifier validity.Classifier) *Hoarder {
	return &Hoarder{graph: g, classifier: classifier}
}

// Name implements [agent.Module].
func (h *Hoarder) Name() string { return "hoarder" }

// ProcessEvent implements [agent.Module].
func (h *Hoarder) ProcessEvent(evt event.Event) {
	if _, ok := evt.(event.NewLocation); !ok {
		return
	}
	if h.graph.IsUnrecognized("take") || h.graph.IsUnrecognized("all") {
		return
	}
	h.eager = true
}

// Eagerness implements [agent.Module].
func (h *Hoarder) Eagerness() float64 {
	if h.eager {
		return 1
	}
	return 0
}

// Step implements [agent.Module].
func (h *Hoarder) Step(response string) (agent.StepResult, error) {
	if !h.awaiting {
		h.awaiting = true
		return agent.StepResult{Action: action.Standalone{Verb: "take all"}}, nil
	}

	h.awaiting = false
	h.eager = false

	loc := h.graph.PlayerLocation()
	if loc == nil {
		return agent.StepResult{Done: true}, nil
	}

	for _, line := range strings.Split(response, "\n") {
		name, result, ok := splitItemLine(line)
		if !ok {
			continue
		}

		ent, found := loc.EntityByName(name)
		if !found {
			ent = kg.NewEntity(name, "", loc)
			h.graph.AddEntity(loc, ent)
		}

		take := action.Take{Entity: ent}
		p, err := validOrClassify(h.classifier, take, result, h.graph.MarkUnrecognized)
		if err != nil {
			return agent.StepResult{}, err
		}
		h.Record(p > 0.5)
		h.graph.RecordEntityAction(ent, take.Text(), p, result)
		if p > 0.5 {
			_ = take.Apply(h.graph)
		}
	}

	return agent.StepResult{Done: true}, nil
}

// splitItemLine parses a single "<entity_name>: <response>" line from
// a `take all` response.
func splitItemLine(line string) (name, result string, ok bool) {
	idx := strings.Index(line, ": ")
	if idx < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(line[:idx])
	result = strings.TrimSpace(line[idx+2:])
	if name == "" {
		return "", "", false
	}
	return name, result, true
}
