package affordance_test

import (
	"math/rand"
	"testing"

	"github.com/nail-agent/nail/internal/affordance"
	"github.com/nail-agent/nail/internal/event"
	"github.com/nail-agent/nail/internal/kg"
	mockngram "github.com/nail-agent/nail/internal/ngram/mock"
)

func TestProbabilityCurveContinuousAndClamped(t *testing.T) {
	t.Parallel()

	th := affordance.Thresholds{Lo: -6, Md: -3, Hi: -1}

	if got := affordance.Probability(-10, th); got != 0 {
		t.Fatalf("expected 0 below lo, got %v", got)
	}
	if got := affordance.Probability(0, th); got != 1 {
		t.Fatalf("expected 1 above hi, got %v", got)
	}

	// Continuity at lo: curve value should be 0 there.
	if got := affordance.Probability(th.Lo, th); got != 0 {
		t.Fatalf("expected curve to equal 0 exactly at lo, got %v", got)
	}
	// Continuity at md: both branches should agree at exactly md.
	below := affordance.Probability(th.Md, th)
	if below != 0.5 {
		t.Fatalf("expected curve to equal 0.5 exactly at md, got %v", below)
	}
	// Continuity at hi.
	if got := affordance.Probability(th.Hi, th); got != 1 {
		t.Fatalf("expected curve to equal 1 exactly at hi, got %v", got)
	}
}

func TestCalibrateAttributeMinimisesMSE(t *testing.T) {
	t.Parallel()

	scores := []float64{-9, -7, -5, -3, -1}
	targets := []float64{0, 0, 0.5, 1, 1}

	th := affordance.CalibrateAttribute(scores, targets)
	if th.Lo > th.Md || th.Md > th.Hi {
		t.Fatalf("expected lo <= md <= hi, got %+v", th)
	}
}

func TestAttributeProbabilityUsesDetectionVerbs(t *testing.T) {
	t.Parallel()

	model := mockngram.New(map[string]float64{
		"take the lamp": -2,
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

	s := affordance.New(model, verbs, affordance.ActionPriors{}, calib, rand.New(rand.NewSource(1)))
	p, err := s.AttributeProbability("lamp", kg.AttrPortable)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p <= 0 {
		t.Fatalf("expected positive portability probability for a clearly takeable noun, got %v", p)
	}
}

func TestExtractSingleObjectActionsIsMemoized(t *testing.T) {
	t.Parallel()

	model := mockngram.New(nil, -5)
	s := affordance.New(model, affordance.AttributeDetectionVerbs{}, affordance.ActionPriors{}, affordance.CalibrationTable{
		ByAttribute: map[kg.Attribute]affordance.Thresholds{},
	}, rand.New(rand.NewSource(1)))

	bus := event.NewBus()
	g := kg.New(bus)
	loc := kg.NewLocation("Room\nA room.")
	g.AddLocation(loc)
	e := kg.NewEntity("rock", "A rock.", loc)

	first, err := s.ExtractSingleObjectActions(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := s.ExtractSingleObjectActions(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("expected memoized result to be stable across calls")
	}
}

func TestExtractDoubleObjectActionsDeterministic(t *testing.T) {
	t.Parallel()

	model := mockngram.New(map[string]float64{
		"unlock the door with the key": -10,
	}, -30)

	s := affordance.New(model, affordance.AttributeDetectionVerbs{}, affordance.ActionPriors{}, affordance.CalibrationTable{}, rand.New(rand.NewSource(1)))

	bus := event.NewBus()
	g := kg.New(bus)
	loc := kg.NewLocation("Room\nA room.")
	g.AddLocation(loc)
	door := kg.NewEntity("door", "A door.", loc)
	key := kg.NewEntity("key", "A key.", loc)

	first, err := s.ExtractDoubleObjectActions(door, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := s.ExtractDoubleObjectActions(door, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("expected deterministic result length")
	}
	for i := range first {
		if first[i].Action.Text() != second[i].Action.Text() {
			t.Fatalf("expected deterministic ordering at index %d", i)
		}
	}
}
