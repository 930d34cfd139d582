package modules

import (
	"strings"

	"github.com/nail-agent/nail/internal/action"
	"github.com/nail-agent/nail/internal/affordance"
	"github.com/nail-agent/nail/internal/agent"
	"github.com/nail-agent/nail/internal/event"
	"github.com/nail-agent/nail/internal/kg"
	"github.com/nail-agent/nail/internal/validity"
)

// Interactor ranks single- and double-object actions over every
// entity at the player's location and in the inventory using the
// affordance scorer, and drives the single best candidate to
// completion.
type Interactor struct {
	recorder

	graph      *kg.KnowledgeGraph
	scorer     *affordance.Scorer
	classifier validity.Classifier

	deathCausing map[string]bool

	best    affordance.ScoredAction
	hasBest bool
	awaiting bool
}

// NewInteractor constructs an Interactor.
func NewInteractor(g *kg.KnowledgeGraph, scorer *affordance.Scorer, classifier validity.Classifier) *Interactor {
	return &Interactor{
		graph:        g,
		scorer:       scorer,
		classifier:   classifier,
		deathCausing: make(map[string]bool),
	}
}

// Name implements [agent.Module].
func (n *Interactor) Name() string { return "interactor" }

// ProcessEvent implements [agent.Module]. Interactor has no event-
// driven state; its candidate set is recomputed on every eagerness
// check instead.
func (n *Interactor) ProcessEvent(event.Event) {}

func (n *Interactor) candidateEntities() []*kg.Entity {
	var out []*kg.Entity
	if loc := n.graph.PlayerLocation(); loc != nil {
		out = append(out, loc.Entities...)
	}
	out = append(out, n.graph.Inventory().Entities...)
	return out
}

func (n *Interactor) eligible(sa affordance.ScoredAction, entInInventory bool) bool {
	text := sa.Action.Text()
	if n.deathCausing[text] {
		return false
	}
	if n.graph.IsUnrecognized(firstWordOf(text)) {
		return false
	}
	if entInInventory && strings.HasPrefix(text, "take ") {
		return false
	}
	if loc := n.graph.PlayerLocation(); loc != nil {
		if _, ok := loc.ActionRecordFor(text); ok {
			return false
		}
	}
	return true
}

func firstWordOf(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

// refreshBest recomputes the single best candidate across every
// entity (and ordered entity pair) in scope, caching it.
func (n *Interactor) refreshBest() error {
	n.hasBest = false
	entities := n.candidateEntities()
	inInventory := make(map[*kg.Entity]bool)
	for _, e := range n.graph.Inventory().Entities {
		inInventory[e] = true
	}

	consider := func(sa affordance.ScoredAction, inv bool) {
		if !n.eligible(sa, inv) {
			return
		}
		if !n.hasBest || sa.Probability > n.best.Probability {
			n.best = sa
			n.hasBest = true
		}
	}

	for _, e := range entities {
		scored, err := n.scorer.ExtractSingleObjectActions(e)
		if err != nil {
			return err
		}
		if len(scored) > 0 {
			consider(scored[0], inInventory[e])
		}
	}

	for i, e1 := range entities {
		for j, e2 := range entities {
			if i == j {
				continue
			}
			scored, err := n.scorer.ExtractDoubleObjectActions(e1, e2)
			if err != nil {
				return err
			}
			if len(scored) > 0 {
				consider(scored[0], false)
			}
		}
	}
	return nil
}

// Eagerness implements [agent.Module].
func (n *Interactor) Eagerness() float64 {
	if err := n.refreshBest(); err != nil {
		return 0
	}
	if !n.hasBest {
		return 0
	}
	return n.best.Probability
}

// Step implements [agent.Module].
func (n *Interactor) Step(response string) (agent.StepResult, error) {
	if !n.awaiting {
		if !n.hasBest {
			if err := n.refreshBest(); err != nil {
				return agent.StepResult{}, err
			}
		}
		if !n.hasBest {
			return agent.StepResult{Done: true}, nil
		}
		n.awaiting = true
		return agent.StepResult{Action: n.best.Action}, nil
	}

	n.awaiting = false
	text := n.best.Action.Text()

	if containsDeathMarkers(response) {
		n.deathCausing[text] = true
	}

	p, err := validOrClassify(n.classifier, n.best.Action, response, n.graph.MarkUnrecognized)
	if err != nil {
		return agent.StepResult{}, err
	}
	n.Record(p > 0.5)

	if ent, ok := entityFor(n.best.Action); ok {
		n.graph.RecordEntityAction(ent, text, p, response)
	} else if loc := n.graph.PlayerLocation(); loc != nil {
		n.graph.RecordLocationAction(loc, text, p, response)
	}

	if p > 0.5 {
		_ = n.best.Action.Apply(n.graph)
	}

	n.hasBest = false
	return agent.StepResult{Done: true}, nil
}

// entityFor returns the primary entity argument of act, if it carries
// exactly one (as every single-object action variant does). Double-
// object actions and standalone verbs report false.
func entityFor(act action.Action) (*kg.Entity, bool) {
	switch a := act.(type) {
	case action.Single:
		return a.Entity, true
	case action.Take:
		return a.Entity, true
	case action.Drop:
		return a.Entity, true
	case action.Open:
		return a.Entity, true
	case action.Close:
		return a.Entity, true
	case action.Lock:
		return a.Entity, true
	case action.Unlock:
		return a.Entity, true
	case action.TurnOn:
		return a.Entity, true
	case action.TurnOff:
		return a.Entity, true
	case action.Consume:
		return a.Entity, true
	case action.Examine:
		return a.Entity, true
	}
	return nil, false
}

// containsDeathMarkers reports whether response signals that the last
// action ended the game.
func containsDeathMarkers(response string) bool {
	upper := strings.ToUpper(response)
	if strings.Contains(upper, "RESTART") && strings.Contains(upper, "RESTORE") && strings.Contains(upper, "QUIT") {
		return true
	}
	return strings.Contains(response, "You have died")
}
