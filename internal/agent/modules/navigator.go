package modules

import (
	"math/rand"
	"strings"

	"github.com/nail-agent/nail/internal/action"
	"github.com/nail-agent/nail/internal/agent"
	"github.com/nail-agent/nail/internal/event"
	"github.com/nail-agent/nail/internal/kg"
	"github.com/nail-agent/nail/internal/validity"
)

// directions is the Navigator's fixed directional vocabulary.
var directions = []string{
	"north", "south", "east", "west",
	"nw", "sw", "ne", "se",
	"up", "down", "enter", "exit",
}

const (
	navDefaultEagerness = 0.1
	navMinEagerness     = 0.01
	navRetryProbability = 0.3
)

const (
	navAwaitingDirection = iota
	navAwaitingDirectionResponse
	navAwaitingLookConfirm
	navAwaitingLookRelocalize
)

// Navigator discovers and localises rooms by issuing directional
// commands and comparing responses against known location
// descriptions.
type Navigator struct {
	recorder

	graph      *kg.KnowledgeGraph
	classifier validity.Classifier
	similarity func(a, b string) float64
	rng        *rand.Rand

	descriptionMatchThreshold float64

	suggested    string
	state        int
	current      string
	moveResponse string
}

// NavigatorOption configures a Navigator at construction time.
type NavigatorOption func(*Navigator)

// WithDescriptionMatchThreshold overrides the 95-point fuzzy
// description-match threshold used during relocalisation.
func WithDescriptionMatchThreshold(p float64) NavigatorOption {
	return func(n *Navigator) { n.descriptionMatchThreshold = p }
}

// WithRNG overrides the Navigator's random source. Defaults to a
// fixed-seed source so tie-breaking is reproducible in tests.
func WithRNG(rng *rand.Rand) NavigatorOption {
	return func(n *Navigator) { n.rng = rng }
}

// NewNavigator constructs a Navigator.
func NewNavigator(g *kg.KnowledgeGraph, classifier validity.Classifier, similarity func(a, b string) float64, opts ...NavigatorOption) *Navigator {
	n := &Navigator{
		graph:                     g,
		classifier:                classifier,
		similarity:                similarity,
		rng:                       rand.New(rand.NewSource(1010)),
		descriptionMatchThreshold: 95.0,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Name implements [agent.Module].
func (n *Navigator) Name() string { return "navigator" }

// ProcessEvent implements [agent.Module].
func (n *Navigator) ProcessEvent(evt event.Event) {
	t, ok := evt.(event.NewTransition)
	if !ok {
		return
	}
	for _, d := range directions {
		if strings.Contains(strings.ToLower(t.NewObs), d) {
			n.suggested = d
			return
		}
	}
}

func (n *Navigator) unexploredDirections() []string {
	loc := n.graph.PlayerLocation()
	if loc == nil {
		return directions
	}
	var out []string
	for _, d := range directions {
		if _, ok := n.graph.Connections().Navigate(loc, d); !ok {
			out = append(out, d)
		}
	}
	return out
}

// Eagerness implements [agent.Module].
func (n *Navigator) Eagerness() float64 {
	if len(n.unexploredDirections()) > 0 {
		return navDefaultEagerness
	}
	return navMinEagerness + n.rng.Float64()*(navDefaultEagerness-navMinEagerness)
}

func (n *Navigator) chooseDirection() string {
	if n.suggested != "" {
		d := n.suggested
		n.suggested = ""
		return d
	}

	loc := n.graph.PlayerLocation()
	if loc != nil {
		for _, d := range directions {
			if !strings.Contains(strings.ToLower(loc.Description), d) {
				continue
			}
			if _, ok := loc.ActionRecordFor(d); !ok {
				return d
			}
		}
	}

	if unexplored := n.unexploredDirections(); len(unexplored) > 0 {
		return unexplored[n.rng.Intn(len(unexplored))]
	}

	if n.rng.Float64() >= navRetryProbability {
		if loc != nil {
			var successful []string
			for _, c := range n.graph.Connections().Outgoing(loc) {
				if c.To != nil {
					successful = append(successful, c.Action)
				}
			}
			if len(successful) > 0 {
				return successful[n.rng.Intn(len(successful))]
			}
		}
	}

	return directions[n.rng.Intn(len(directions))]
}

// Step implements [agent.Module].
func (n *Navigator) Step(response string) (agent.StepResult, error) {
	switch n.state {
	case navAwaitingDirection:
		n.current = n.chooseDirection()
		n.state = navAwaitingDirectionResponse
		return agent.StepResult{Action: action.Nav{Direction: n.current}}, nil

	case navAwaitingDirectionResponse:
		n.moveResponse = response
		p, err := validity.ActionValid(n.classifier, n.current, response, n.graph.MarkUnrecognized)
		if err != nil {
			return agent.StepResult{}, err
		}
		n.Record(p > 0.5)

		loc := n.graph.PlayerLocation()
		if loc != nil {
			n.graph.RecordLocationAction(loc, n.current, p, response)
		}

		destName := kg.FirstLine(response)
		if existing := n.findLocationByName(destName); existing != nil {
			n.confirmMove(loc, existing, response)
			n.state = navAwaitingDirection
			return agent.StepResult{Done: true}, nil
		}

		if loc != nil {
			if prevTo, tried := n.graph.Connections().Navigate(loc, n.current); tried && prevTo != nil && prevTo.Name != destName {
				n.state = navAwaitingLookRelocalize
				return agent.StepResult{Action: action.Standalone{Verb: "look"}}, nil
			}
		}

		n.state = navAwaitingLookConfirm
		return agent.StepResult{Action: action.Standalone{Verb: "look"}}, nil

	case navAwaitingLookConfirm:
		loc := n.graph.PlayerLocation()
		pStay := 0.0
		if loc != nil {
			pStay = n.similarity(loc.Description, response)
		}
		pMove := n.similarity(response, n.moveResponse)

		n.state = navAwaitingDirection
		if pMove > pStay {
			dest := n.resolveDestination(response)
			n.confirmMove(loc, dest, response)
		} else if loc != nil {
			n.graph.AddConnection(kg.Connection{From: loc, Action: n.current, To: nil, Message: response})
		}
		return agent.StepResult{Done: true}, nil

	case navAwaitingLookRelocalize:
		n.state = navAwaitingDirection
		if best, ok := n.graph.MostSimilarLocation(response); ok && n.similarity(best.Description, response) >= n.descriptionMatchThreshold {
			n.graph.SetPlayerLocation(best)
		}
		return agent.StepResult{Done: true}, nil
	}

	return agent.StepResult{Done: true}, nil
}

func (n *Navigator) findLocationByName(name string) *kg.Location {
	for _, loc := range n.graph.Locations() {
		if loc.Name == name {
			return loc
		}
	}
	return nil
}

func (n *Navigator) resolveDestination(lookResponse string) *kg.Location {
	name := kg.FirstLine(lookResponse)
	if existing := n.findLocationByName(name); existing != nil {
		return existing
	}
	loc := kg.NewLocation(lookResponse)
	resident, _ := n.graph.AddLocation(loc)
	return resident
}

func (n *Navigator) confirmMove(from, to *kg.Location, message string) {
	if from != nil && to != nil {
		n.graph.AddConnection(kg.Connection{From: from, Action: n.current, To: to, Message: message})
	}
	n.graph.SetPlayerLocation(to)
}
