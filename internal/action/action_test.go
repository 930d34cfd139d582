package action_test

import (
	"testing"

	"github.com/nail-agent/nail/internal/action"
	"github.com/nail-agent/nail/internal/event"
	"github.com/nail-agent/nail/internal/kg"
)

func TestTextEqualityIsActionEquality(t *testing.T) {
	t.Parallel()

	bus := event.NewBus()
	g := kg.New(bus)
	loc := kg.NewLocation("Kitchen\nA small kitchen.")
	g.AddLocation(loc)

	lamp1 := kg.NewEntity("lamp", "A lamp.", loc)
	lamp2 := kg.NewEntity("lamp", "A different lamp.", loc)

	a1 := action.Single{Verb: "take", Entity: lamp1}
	a2 := action.Single{Verb: "take", Entity: lamp2}

	if a1.Text() != a2.Text() {
		t.Fatalf("expected equal-verb/equal-name actions to render identical text")
	}

	// Record both under their shared text key and confirm the map
	// collapses them to one entry, since equality here is text
	// equality.
	records := map[string]bool{}
	records[a1.Text()] = true
	records[a2.Text()] = true
	if len(records) != 1 {
		t.Fatalf("expected a single action-record entry for equal-text actions")
	}
}

func TestTakeApplyMovesEntityToInventory(t *testing.T) {
	t.Parallel()

	bus := event.NewBus()
	g := kg.New(bus)
	loc := kg.NewLocation("Kitchen\nA small kitchen.")
	g.AddLocation(loc)
	g.SetPlayerLocation(loc)

	lamp := kg.NewEntity("lamp", "A lamp.", loc)
	g.AddEntity(loc, lamp)

	take := action.Take{Entity: lamp}
	if err := take.Apply(g); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false
	for _, e := range g.Inventory().Entities {
		if e == lamp {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected lamp to be in inventory after Take.Apply")
	}
}

func TestOpenApplySetsStateAndAttribute(t *testing.T) {
	t.Parallel()

	bus := event.NewBus()
	g := kg.New(bus)
	loc := kg.NewLocation("Shed\nA garden shed.")
	g.AddLocation(loc)

	crate := kg.NewEntity("crate", "A wooden crate.", loc)
	open := action.Open{Entity: crate}
	if err := open.Apply(g); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !crate.State.Openable() || !*crate.State.IsOpen {
		t.Fatalf("expected crate to be open after Open.Apply")
	}
	if !crate.HasAttribute(kg.AttrOpenable) {
		t.Fatalf("expected crate to gain the openable attribute")
	}
}

func TestDoubleTextRendersVerbEntityPrepEntity(t *testing.T) {
	t.Parallel()

	loc := kg.NewLocation("Room\nA room.")
	door := kg.NewEntity("door", "A door.", loc)
	key := kg.NewEntity("key", "A key.", loc)

	d := action.Double{Verb: "unlock", Entity1: door, Prep: "with", Entity2: key}
	want := "unlock door with key"
	if d.Text() != want {
		t.Fatalf("got %q, want %q", d.Text(), want)
	}
}

func TestExamineApplyIsNoOp(t *testing.T) {
	t.Parallel()

	bus := event.NewBus()
	g := kg.New(bus)
	loc := kg.NewLocation("Room\nA room.")
	g.AddLocation(loc)
	statue := kg.NewEntity("statue", "", loc)

	ex := action.Examine{Entity: statue}
	if err := ex.Apply(g); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if statue.Description != "" {
		t.Fatalf("expected Examine.Apply to leave entity state untouched")
	}
}
