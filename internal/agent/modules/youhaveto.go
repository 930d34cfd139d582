package modules

import (
	"regexp"
	"strings"

	"github.com/nail-agent/nail/internal/action"
	"github.com/nail-agent/nail/internal/agent"
	"github.com/nail-agent/nail/internal/event"
	"github.com/nail-agent/nail/internal/kg"
	"github.com/nail-agent/nail/internal/validity"
)

// hintPatterns is the fixed set of hint regexes the game uses to tell
// the player what to do next. Each captures the verb phrase the game
// recommends.
var hintPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Perhaps you should (.+?)\.?$`),
	regexp.MustCompile(`(?i)You should (.+?)\.?$`),
	regexp.MustCompile(`(?i)You'll have to (.+?)\.?$`),
	regexp.MustCompile(`(?i)You'd better (.+?)\.?$`),
	regexp.MustCompile(`(?i)You're not going anywhere until you (.+?) first\.?$`),
}

// YouHaveTo captures a hinted verb phrase from the game's own "you
// should..." style nudges and replays it verbatim.
type YouHaveTo struct {
	recorder

	graph      *kg.KnowledgeGraph
	classifier validity.Classifier

	eager    bool
	hint     string
	awaiting bool
}

// NewYouHaveTo constructs a YouHaveTo module.
func NewYouHaveTo(g *kg.KnowledgeGraph, classifier validity.Classifier) *YouHaveTo {
	return &YouHaveTo{graph: g, classifier: classifier}
}

// Name implements [agent.Module].
func (n *YouHaveTo) Name() string { return "you_have_to" }

// ProcessEvent implements [agent.Module].
func (n *YouHaveTo) ProcessEvent(evt event.Event) {
	t, ok := evt.(event.NewTransition)
	if !ok {
		return
	}
	for _, pat := range hintPatterns {
		m := pat.FindStringSubmatch(t.NewObs)
		if m == nil {
			continue
		}
		phrase := strings.TrimSpace(m[1])
		if phrase == "" {
			continue
		}
		if n.graph.IsUnrecognized(firstWordOf(phrase)) {
			continue
		}
		n.hint = phrase
		n.eager = true
		return
	}
}

// Eagerness implements [agent.Module].
func (n *YouHaveTo) Eagerness() float64 {
	if n.eager {
		return 1
	}
	return 0
}

// Step implements [agent.Module].
func (n *YouHaveTo) Step(response string) (agent.StepResult, error) {
	if !n.awaiting {
		n.awaiting = true
		return agent.StepResult{Action: action.Standalone{Verb: n.hint}}, nil
	}

	n.awaiting = false
	n.eager = false
	hint := n.hint
	n.hint = ""

	p, err := validity.ActionValid(n.classifier, hint, response, n.graph.MarkUnrecognized)
	if err != nil {
		return agent.StepResult{}, err
	}
	n.Record(p > 0.5)
	if loc := n.graph.PlayerLocation(); loc != nil {
		n.graph.RecordLocationAction(loc, hint, p, response)
	}
	return agent.StepResult{Done: true}, nil
}
