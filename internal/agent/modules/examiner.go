package modules

import (
	"github.com/nail-agent/nail/internal/action"
	"github.com/nail-agent/nail/internal/agent"
	"github.com/nail-agent/nail/internal/event"
	"github.com/nail-agent/nail/internal/kg"
	"github.com/nail-agent/nail/internal/nlp"
	"github.com/nail-agent/nail/internal/validity"
)

const (
	examinerFillEagerness  = 0.9
	examinerQueueEagerness = 0.11
	examinerValidThreshold = 0.5
	examinerMatchThreshold = 95.0
)

// Examiner discovers entities by issuing `examine` commands against
// noun-phrase candidates detected in observation text.
type Examiner struct {
	recorder

	graph      *kg.KnowledgeGraph
	extractor  *nlp.Extractor
	classifier validity.Classifier
	similarity func(a, b string) float64

	validThreshold float64
	matchThreshold float64

	queue map[*kg.Location][]string

	pendingTarget string
	pendingFill   bool
	awaiting      bool
}

// ExaminerOption configures an Examiner at construction time.
type ExaminerOption func(*Examiner)

// WithValidThreshold overrides the 0.5 validity threshold used to
// decide whether an examine response confirms entity discovery.
func WithValidThreshold(p float64) ExaminerOption {
	return func(e *Examiner) { e.validThreshold = p }
}

// WithMatchThreshold overrides the 95-point fuzzy match threshold used
// to fold an examine response into an existing entity's alternate
// names.
func WithMatchThreshold(p float64) ExaminerOption {
	return func(e *Examiner) { e.matchThreshold = p }
}

// NewExaminer constructs an Examiner.
func NewExaminer(g *kg.KnowledgeGraph, extractor *nlp.Extractor, classifier validity.Classifier, similarity func(a, b string) float64, opts ...ExaminerOption) *Examiner {
	e := &Examiner{
		graph:          g,
		extractor:      extractor,
		classifier:     classifier,
		similarity:     similarity,
		validThreshold: examinerValidThreshold,
		matchThreshold: examinerMatchThreshold,
		queue:          make(map[*kg.Location][]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements [agent.Module].
func (e *Examiner) Name() string { return "examiner" }

// ProcessEvent implements [agent.Module].
func (e *Examiner) ProcessEvent(evt event.Event) {
	text := evt.Message()
	loc := e.graph.PlayerLocation()
	if loc == nil || text == "" {
		return
	}
	for _, candidate := range e.extractor.Candidates(text) {
		e.enqueue(loc, candidate)
	}
}

func (e *Examiner) enqueue(loc *kg.Location, candidate string) {
	if _, ok := loc.EntityByName(candidate); ok {
		return
	}
	if _, ok := loc.ActionRecordFor("examine " + candidate); ok {
		return
	}
	if e.graph.IsUnrecognized(candidate) {
		return
	}
	for _, pending := range e.queue[loc] {
		if pending == candidate {
			return
		}
	}
	e.queue[loc] = append(e.queue[loc], candidate)
}

func (e *Examiner) descriptionlessEntity() *kg.Entity {
	loc := e.graph.PlayerLocation()
	if loc == nil {
		return nil
	}
	for _, ent := range loc.Entities {
		if ent.Description == "" {
			return ent
		}
	}
	for _, ent := range e.graph.Inventory().Entities {
		if ent.Description == "" {
			return ent
		}
	}
	return nil
}

// Eagerness implements [agent.Module].
func (e *Examiner) Eagerness() float64 {
	if e.descriptionlessEntity() != nil {
		return examinerFillEagerness
	}
	loc := e.graph.PlayerLocation()
	if loc != nil && len(e.queue[loc]) > 0 {
		return examinerQueueEagerness
	}
	return 0
}

// Step implements [agent.Module].
func (e *Examiner) Step(response string) (agent.StepResult, error) {
	if !e.awaiting {
		if missing := e.descriptionlessEntity(); missing != nil {
			e.pendingTarget = missing.Name()
			e.pendingFill = true
			e.awaiting = true
			return agent.StepResult{Action: action.Single{Verb: "examine", Entity: missing}}, nil
		}

		loc := e.graph.PlayerLocation()
		if loc == nil || len(e.queue[loc]) == 0 {
			return agent.StepResult{Done: true}, nil
		}
		name := e.queue[loc][0]
		e.queue[loc] = e.queue[loc][1:]
		e.pendingTarget = name
		e.pendingFill = false
		e.awaiting = true
		return agent.StepResult{Action: action.Standalone{Verb: "examine " + name}}, nil
	}

	e.awaiting = false
	p, err := validity.ActionValid(e.classifier, "examine "+e.pendingTarget, response, e.graph.MarkUnrecognized)
	if err != nil {
		return agent.StepResult{}, err
	}
	e.Record(p > e.validThreshold)

	if e.pendingFill {
		loc := e.graph.PlayerLocation()
		if loc != nil {
			if ent, ok := loc.EntityByName(e.pendingTarget); ok {
				ent.Description = response
			}
		} else if ent, ok := e.graph.Inventory().EntityByName(e.pendingTarget); ok {
			ent.Description = response
		}
		return agent.StepResult{Done: true}, nil
	}

	if p <= e.validThreshold {
		return agent.StepResult{Done: true}, nil
	}

	loc := e.graph.PlayerLocation()
	if loc == nil {
		return agent.StepResult{Done: true}, nil
	}

	if match, ok := loc.EntityByDescription(response, e.matchThreshold, e.similarity); ok {
		match.AddName(e.pendingTarget)
	} else {
		ent := kg.NewEntity(e.pendingTarget, response, loc)
		e.graph.AddEntity(loc, ent)
	}
	e.graph.RecordLocationAction(loc, "examine "+e.pendingTarget, p, response)

	return agent.StepResult{Done: true}, nil
}
