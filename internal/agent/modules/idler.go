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

const idlerEagerness = 0.05

// idlerStandaloneVerbs is the built-in vocabulary of filler commands
// sampled uniformly for the 10% standalone branch, independent of any
// scorer or language model.
var idlerStandaloneVerbs = []string{
	"get all", "take all", "drop all", "wait", "yes",
	"look", "in", "out", "climb", "turn on", "turn off",
	"use", "clap", "get", "dig", "swim", "jump",
	"drink", "leave", "put", "talk", "hop", "buy",
	"no", "dance", "sleep", "stand", "feel", "sit",
	"pray", "cross", "knock", "open", "pull", "push",
	"away", "kill", "hide", "pay", "type", "listen",
	"inventory", "get up",
}

// idlerSingleObjectVerbs is the built-in single-object verb vocabulary
// sampled uniformly for the 70% single-object branch. It is kept
// separate from the affordance scorer's learned ranking so the Idler
// explores widely instead of reinforcing Interactor's own bias.
var idlerSingleObjectVerbs = []string{
	"call", "lock", "smash", "kiss", "free",
	"answer", "pay", "make", "play", "push",
	"rewind", "mix", "sharpen", "print", "tap",
	"unlock", "repair", "build", "bribe", "chew",
	"eat", "wear", "think", "cross", "cut",
	"slide", "walk", "get", "offer", "unlight",
	"douse", "jump", "buy", "off", "remember",
	"shoot", "oil", "look", "operate", "type",
	"kill", "clean", "steal", "remove", "turn",
	"press", "watch", "wave", "throw", "search",
	"exit", "blow", "raise", "cast", "pluck",
	"unfold", "open", "activate", "ride", "set",
	"lift", "arrest", "pull", "follow", "wake",
	"talk", "hide", "dial", "untie", "start",
	"swing", "dismount", "catch", "feed", "kick",
	"part", "inflate", "touch", "drink", "hello",
	"dig", "rub", "hit", "climb", "swim", "plug",
	"roll", "leave", "put", "tear", "break",
	"ring", "bite", "warm", "give", "say", "sit",
	"fill", "shake", "take", "enter", "brandish",
	"light", "show", "chop", "move", "insert",
	"feel", "fix", "burn", "use", "stab", "read",
	"close", "examine", "fly", "hold", "water",
	"load", "tie", "inspect", "mount", "empty",
	"connect", "drop", "go", "lower", "wait",
	"weigh", "tickle", "extinguish", "out", "on",
	"spray", "wring", "pour", "grab", "knock on",
	"look under", "get all from", "turn on", "turn off",
}

// idlerComplexVerb pairs a double-object verb with the preposition
// joining its two entity arguments, e.g. "put" ... "in" ....
type idlerComplexVerb struct {
	Verb string
	Prep string
}

// idlerComplexVerbs is the built-in double-object verb+preposition
// vocabulary sampled uniformly for the 20% double-object branch.
var idlerComplexVerbs = []idlerComplexVerb{
	{"give", "to"}, {"tell", "to"}, {"ask", "about"},
	{"put", "in"}, {"unlock", "with"}, {"tie", "to"},
	{"rub", "with"}, {"dip", "in"}, {"ask", "for"},
	{"kill", "with"}, {"show", "to"}, {"chop", "with"},
	{"compare", "and"}, {"throw", "at"}, {"wet", "with"},
	{"get", "from"}, {"attack", "with"}, {"dig", "with"},
	{"cut", "with"}, {"insert", "in"}, {"operate", "on"},
	{"open", "with"}, {"point", "at"}, {"break", "with"},
}

// Idler is always present at the eagerness floor, sampling a random
// verb phrase (standalone, single-object, or double-object) from its
// own built-in vocabularies by fixed weight, entirely independent of
// the affordance scorer, and retrying until the parser recognises it.
type Idler struct {
	recorder

	graph      *kg.KnowledgeGraph
	classifier validity.Classifier
	rng        *rand.Rand

	pending  action.Action
	pendingE *kg.Entity
	awaiting bool
}

// NewIdler constructs an Idler.
func NewIdler(g *kg.KnowledgeGraph, classifier validity.Classifier, rng *rand.Rand) *Idler {
	if rng == nil {
		rng = rand.New(rand.NewSource(1010))
	}
	return &Idler{graph: g, classifier: classifier, rng: rng}
}

// Name implements [agent.Module].
func (n *Idler) Name() string { return "idler" }

// ProcessEvent implements [agent.Module]. The Idler is indifferent to
// events; it is always present at the floor.
func (n *Idler) ProcessEvent(event.Event) {}

// Eagerness implements [agent.Module].
func (n *Idler) Eagerness() float64 { return idlerEagerness }

func (n *Idler) entities() []*kg.Entity {
	var out []*kg.Entity
	if loc := n.graph.PlayerLocation(); loc != nil {
		out = append(out, loc.Entities...)
	}
	out = append(out, n.graph.Inventory().Entities...)
	return out
}

// sample draws a filler action by fixed weight: 10% standalone, 70%
// single-object, 20% double-object, each sampled uniformly from a
// static built-in vocabulary rather than the affordance scorer's
// learned ranking, so the Idler probes widely instead of reinforcing
// whatever Interactor already favours.
func (n *Idler) sample() (action.Action, *kg.Entity) {
	entities := n.entities()
	roll := n.rng.Float64()

	switch {
	case roll < 0.10 || len(entities) == 0:
		verb := idlerStandaloneVerbs[n.rng.Intn(len(idlerStandaloneVerbs))]
		return action.Standalone{Verb: verb}, nil

	case roll < 0.80:
		e := entities[n.rng.Intn(len(entities))]
		verb := idlerSingleObjectVerbs[n.rng.Intn(len(idlerSingleObjectVerbs))]
		return action.Single{Verb: verb, Entity: e}, e

	default:
		if len(entities) < 2 {
			verb := idlerStandaloneVerbs[n.rng.Intn(len(idlerStandaloneVerbs))]
			return action.Standalone{Verb: verb}, nil
		}
		e1, e2 := n.distinctEntityPair(entities)
		if e1 == nil {
			verb := idlerStandaloneVerbs[n.rng.Intn(len(idlerStandaloneVerbs))]
			return action.Standalone{Verb: verb}, nil
		}
		cv := idlerComplexVerbs[n.rng.Intn(len(idlerComplexVerbs))]
		return action.Double{Verb: cv.Verb, Entity1: e1, Prep: cv.Prep, Entity2: e2}, nil
	}
}

// distinctEntityPair samples two distinct entities from entities,
// retrying up to 100 times before giving up.
func (n *Idler) distinctEntityPair(entities []*kg.Entity) (*kg.Entity, *kg.Entity) {
	for attempt := 0; attempt < 100; attempt++ {
		e1 := entities[n.rng.Intn(len(entities))]
		e2 := entities[n.rng.Intn(len(entities))]
		if e1 != e2 {
			return e1, e2
		}
	}
	return nil, nil
}

// Step implements [agent.Module].
func (n *Idler) Step(response string) (agent.StepResult, error) {
	if !n.awaiting {
		act, ent := n.sample()
		n.pending = act
		n.pendingE = ent
		n.awaiting = true
		return agent.StepResult{Action: act}, nil
	}

	n.awaiting = false
	recognized, word := validity.ActionRecognized(n.pending.Text(), response)
	if !recognized {
		if word != "" {
			n.graph.MarkUnrecognized(word)
		}
		act, ent := n.sample()
		n.pending = act
		n.pendingE = ent
		n.awaiting = true
		return agent.StepResult{Action: act}, nil
	}

	p, err := validOrClassify(n.classifier, n.pending, response, n.graph.MarkUnrecognized)
	if err != nil {
		return agent.StepResult{}, err
	}
	n.Record(p > 0.5)

	if n.pendingE != nil {
		n.graph.RecordEntityAction(n.pendingE, n.pending.Text(), p, response)
	} else if loc := n.graph.PlayerLocation(); loc != nil && !isInventoryQuery(n.pending.Text()) {
		n.graph.RecordLocationAction(loc, n.pending.Text(), p, response)
	}
	if p > 0.5 {
		_ = n.pending.Apply(n.graph)
	}

	return agent.StepResult{Done: true}, nil
}

func isInventoryQuery(text string) bool {
	return strings.HasPrefix(text, "inventory")
}
