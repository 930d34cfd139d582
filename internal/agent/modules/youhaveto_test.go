package modules

import (
	"testing"

	"github.com/nail-agent/nail/internal/event"
	"github.com/nail-agent/nail/internal/kg"
	validitymock "github.com/nail-agent/nail/internal/validity/mock"
)

func TestYouHaveToCapturesHintedVerbPhrase(t *testing.T) {
	t.Parallel()

	bus := event.NewBus()
	g := kg.New(bus)
	loc := kg.NewLocation("Room\nA room.")
	g.AddLocation(loc)
	g.SetPlayerLocation(loc)

	yht := NewYouHaveTo(g, validitymock.New())
	if yht.Eagerness() != 0 {
		t.Fatalf("expected zero eagerness before any hint")
	}

	yht.ProcessEvent(event.NewTransition{NewObs: "Perhaps you should open the window."})
	if yht.Eagerness() != 1 {
		t.Fatalf("expected eagerness 1 once a hint is observed")
	}

	result, err := yht.Step("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Action.Text() != "open the window" {
		t.Fatalf("expected the captured verb phrase, got %q", result.Action.Text())
	}

	result, err = yht.Step("Opened.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Done {
		t.Fatalf("expected the exchange to complete")
	}
	if yht.Eagerness() != 0 {
		t.Fatalf("expected eagerness to drop back to 0")
	}
}

func TestYouHaveToIgnoresUnmatchedTransitions(t *testing.T) {
	t.Parallel()

	bus := event.NewBus()
	g := kg.New(bus)
	yht := NewYouHaveTo(g, validitymock.New())

	yht.ProcessEvent(event.NewTransition{NewObs: "Nothing happens."})
	if yht.Eagerness() != 0 {
		t.Fatalf("expected zero eagerness when no hint pattern matches")
	}
}
