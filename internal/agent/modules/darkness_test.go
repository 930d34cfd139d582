package modules

import (
	"testing"

	"github.com/nail-agent/nail/internal/event"
	"github.com/nail-agent/nail/internal/kg"
	validitymock "github.com/nail-agent/nail/internal/validity/mock"
)

func TestDarknessEagernessOnMarker(t *testing.T) {
	t.Parallel()

	bus := event.NewBus()
	g := kg.New(bus)
	loc := kg.NewLocation("Room\nA room.")
	g.AddLocation(loc)
	g.SetPlayerLocation(loc)

	d := NewDarkness(g, validitymock.New())
	if d.Eagerness() != 0 {
		t.Fatalf("expected zero eagerness before any darkness marker")
	}

	d.ProcessEvent(event.NewTransition{NewObs: "It is pitch black. You are likely to be eaten by a grue."})
	if d.Eagerness() != 1 {
		t.Fatalf("expected eagerness 1 once darkness is observed")
	}

	result, err := d.Step("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Action.Text() != "turn on" {
		t.Fatalf("expected to yield 'turn on', got %q", result.Action.Text())
	}

	result, err = d.Step("The lamp is now on.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Done {
		t.Fatalf("expected the exchange to complete")
	}
	if d.Eagerness() != 0 {
		t.Fatalf("expected eagerness to drop back to 0")
	}
}
