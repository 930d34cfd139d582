package modules

import (
	"math/rand"
	"testing"

	"github.com/nail-agent/nail/internal/affordance"
	"github.com/nail-agent/nail/internal/event"
	"github.com/nail-agent/nail/internal/kg"
	mockngram "github.com/nail-agent/nail/internal/ngram/mock"
	validitymock "github.com/nail-agent/nail/internal/validity/mock"
)

func newPortableScorer() *affordance.Scorer {
	model := mockngram.New(map[string]float64{
		"take the lamp": -1,
		"the lamp":      -3,
	}, -5)
	verbs := affordance.AttributeDetectionVerbs{
		kg.AttrPortable: {"take"},
	}
	calib := affordance.CalibrationTable{
		ByAttribute: map[kg.Attribute]affordance.Thresholds{
			kg.AttrPortable: {Lo: -2, Md: 0, Hi: 2},
		},
	}
	return affordance.New(model, verbs, affordance.ActionPriors{}, calib, rand.New(rand.NewSource(1)))
}

func TestInteractorEagernessReflectsBestCandidate(t *testing.T) {
	t.Parallel()

	bus := event.NewBus()
	g := kg.New(bus)
	loc := kg.NewLocation("Room\nA room.")
	g.AddLocation(loc)
	g.SetPlayerLocation(loc)
	lamp := kg.NewEntity("lamp", "A brass lamp.", loc)
	g.AddEntity(loc, lamp)

	scorer := newPortableScorer()
	classifier := validitymock.New()
	in := NewInteractor(g, scorer, classifier)

	eagerness := in.Eagerness()
	if eagerness <= 0 {
		t.Fatalf("expected positive eagerness for a clearly portable entity, got %v", eagerness)
	}
	if !in.hasBest {
		t.Fatalf("expected a cached best candidate after computing eagerness")
	}
}

func TestInteractorAppliesWinningActionOnSuccess(t *testing.T) {
	t.Parallel()

	bus := event.NewBus()
	g := kg.New(bus)
	loc := kg.NewLocation("Room\nA room.")
	g.AddLocation(loc)
	g.SetPlayerLocation(loc)
	lamp := kg.NewEntity("lamp", "A brass lamp.", loc)
	g.AddEntity(loc, lamp)

	scorer := newPortableScorer()
	// Deliberately rig the classifier to say "invalid" for the winning
	// action's response. Since action.Take implements its own
	// deterministic Validate (success iff the response contains
	// "taken" or "already"), the classifier should never be consulted
	// for it and its wrong answer should have no effect.
	classifier := validitymock.New()
	classifier.DefaultLabel = "__label__invalid"
	classifier.DefaultProba = 1.0
	in := NewInteractor(g, scorer, classifier)

	if in.Eagerness() <= 0 {
		t.Fatalf("expected a candidate to be available")
	}
	result, err := in.Step("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Action == nil {
		t.Fatalf("expected an action to be yielded")
	}

	result, err = in.Step("Taken.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Done {
		t.Fatalf("expected the interactor to relinquish control after one exchange")
	}

	found := false
	for _, e := range g.Inventory().Entities {
		if e == lamp {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the lamp to be moved into the inventory after a valid take")
	}
}

func TestInteractorMarksDeathCausingActions(t *testing.T) {
	t.Parallel()

	bus := event.NewBus()
	g := kg.New(bus)
	loc := kg.NewLocation("Room\nA room.")
	g.AddLocation(loc)
	g.SetPlayerLocation(loc)
	lamp := kg.NewEntity("lamp", "A brass lamp.", loc)
	g.AddEntity(loc, lamp)

	scorer := newPortableScorer()
	classifier := validitymock.New()
	in := NewInteractor(g, scorer, classifier)

	in.Eagerness()
	if _, err := in.Step(""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	actionText := in.best.Action.Text()
	if _, err := in.Step("You have died."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !in.deathCausing[actionText] {
		t.Fatalf("expected the action to be marked death-causing")
	}
}
