package modules

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/nail-agent/nail/internal/event"
	"github.com/nail-agent/nail/internal/kg"
	validitymock "github.com/nail-agent/nail/internal/validity/mock"
)

func exactSimilarity(a, b string) float64 {
	if a == b {
		return 100
	}
	return 0
}

// containsSimilarity approximates a partial-ratio fuzzy match closely
// enough to exercise the stay-vs-move comparison deterministically.
func containsSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if strings.Contains(b, a) || strings.Contains(a, b) {
		return 100
	}
	return 0
}

func TestNavigatorEagernessDropsOnceFullyExplored(t *testing.T) {
	t.Parallel()

	bus := event.NewBus()
	graph := kg.New(bus)
	start := kg.NewLocation("Start\nA small room.")
	graph.AddLocation(start)
	graph.SetPlayerLocation(start)

	classifier := validitymock.New()
	nav := NewNavigator(graph, classifier, exactSimilarity, WithRNG(rand.New(rand.NewSource(1))))

	if nav.Eagerness() != navDefaultEagerness {
		t.Fatalf("expected default eagerness with unexplored directions, got %v", nav.Eagerness())
	}

	for _, d := range directions {
		graph.Connections().Add(kg.Connection{From: start, Action: d, To: nil})
	}

	if e := nav.Eagerness(); e < navMinEagerness || e > navDefaultEagerness {
		t.Fatalf("expected eagerness in [%v, %v] once fully explored, got %v", navMinEagerness, navDefaultEagerness, e)
	}
}

func TestNavigatorConfirmsMoveToExistingLocation(t *testing.T) {
	t.Parallel()

	bus := event.NewBus()
	graph := kg.New(bus)
	start := kg.NewLocation("Start\nA small room.")
	graph.AddLocation(start)
	graph.SetPlayerLocation(start)
	north := kg.NewLocation("North Room\nA colder room.")
	graph.AddLocation(north)

	classifier := validitymock.New()
	nav := NewNavigator(graph, classifier, exactSimilarity, WithRNG(rand.New(rand.NewSource(1))))
	nav.suggested = "north"

	result, err := nav.Step("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Action.Text() != "north" {
		t.Fatalf("expected the suggested direction to be issued first, got %q", result.Action.Text())
	}

	result, err = nav.Step("North Room\nA colder room.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Done {
		t.Fatalf("expected the move to complete in one follow-up step")
	}
	if graph.PlayerLocation() != north {
		t.Fatalf("expected player location to move to the pre-existing North Room")
	}
	if to, ok := graph.Connections().Navigate(start, "north"); !ok || to != north {
		t.Fatalf("expected a recorded connection from Start to North Room via north")
	}
}

func TestNavigatorDiscoversNewLocationViaLookConfirmation(t *testing.T) {
	t.Parallel()

	bus := event.NewBus()
	graph := kg.New(bus)
	start := kg.NewLocation("Start\nA small room.")
	graph.AddLocation(start)
	graph.SetPlayerLocation(start)

	classifier := validitymock.New()
	nav := NewNavigator(graph, classifier, containsSimilarity, WithRNG(rand.New(rand.NewSource(1))))
	nav.suggested = "south"

	if _, err := nav.Step(""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The movement response is itself a full room description, as
	// happens when a successful move's response already shows the new
	// room — the look confirmation should closely resemble it.
	lookText := "South Cellar\nA damp cellar."
	result, err := nav.Step(lookText)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Action.Text() != "look" {
		t.Fatalf("expected a confirmation look, got %q", result.Action.Text())
	}

	result, err = nav.Step(lookText)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Done {
		t.Fatalf("expected the discovery to complete")
	}
	if graph.PlayerLocation() == nil || graph.PlayerLocation().Name != "South Cellar" {
		t.Fatalf("expected player location to become the newly discovered South Cellar")
	}
}

// TestNavigatorStaysPutWhenLookMatchesCurrentLocation exercises the
// case the pMove/pStay comparison exists to catch: the movement
// response is dissimilar from the look confirmation, so pMove must
// come out low rather than trivially matching. If pMove were
// (incorrectly) computed against the look response itself, it would
// always appear to confirm a move regardless of what the room
// actually looks like.
func TestNavigatorStaysPutWhenLookMatchesCurrentLocation(t *testing.T) {
	t.Parallel()

	bus := event.NewBus()
	graph := kg.New(bus)
	start := kg.NewLocation("Start\nA small room.")
	graph.AddLocation(start)
	graph.SetPlayerLocation(start)

	classifier := validitymock.New()
	nav := NewNavigator(graph, classifier, containsSimilarity, WithRNG(rand.New(rand.NewSource(1))))
	nav.suggested = "north"

	if _, err := nav.Step(""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A movement response that neither matches the current room's
	// description nor the eventual look response.
	result, err := nav.Step("You can't go that way.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Action.Text() != "look" {
		t.Fatalf("expected a confirmation look, got %q", result.Action.Text())
	}

	// The look response matches the known current room, not the
	// movement response, so the navigator should conclude it stayed put.
	result, err = nav.Step(start.Description)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Done {
		t.Fatalf("expected the stay-in-place check to complete")
	}
	if graph.PlayerLocation() != start {
		t.Fatalf("expected player location to remain at Start, got %v", graph.PlayerLocation())
	}
	if _, ok := graph.Connections().Navigate(start, "north"); !ok {
		t.Fatalf("expected a recorded failed connection for north")
	}
	if to, _ := graph.Connections().Navigate(start, "north"); to != nil {
		t.Fatalf("expected the recorded connection to have no destination")
	}
}
