package kg_test

import (
	"strings"
	"testing"

	"github.com/nail-agent/nail/internal/event"
	"github.com/nail-agent/nail/internal/kg"
)

func TestRender_IncludesLocationsEntitiesAndConnections(t *testing.T) {
	t.Parallel()

	bus := event.NewBus()
	g := kg.New(bus)

	kitchen, _ := g.AddLocation(kg.NewLocation("Kitchen\nA small kitchen."))
	cellar, _ := g.AddLocation(kg.NewLocation("Cellar\nA dark cellar."))
	g.AddConnection(kg.Connection{From: kitchen, Action: "down", To: cellar, Message: "You descend."})
	g.AddConnection(kg.Connection{From: kitchen, Action: "north", To: nil, Message: "You can't go that way."})

	lamp := kg.NewEntity("lamp", "A brass lamp.", kitchen)
	g.AddEntity(kitchen, lamp)
	g.RecordLocationAction(kitchen, "down", 0.9, "You descend.")

	out := kg.Render(g)

	for _, want := range []string{"== Kitchen ==", "== Cellar ==", "entities: lamp", "down -> Cellar", "north -> (blocked)"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q in:\n%s", want, out)
		}
	}
}

func TestRender_IsDeterministic(t *testing.T) {
	t.Parallel()

	bus := event.NewBus()
	g := kg.New(bus)
	g.AddLocation(kg.NewLocation("Attic\nA dusty attic."))
	g.AddLocation(kg.NewLocation("Basement\nA damp basement."))

	a := kg.Render(g)
	b := kg.Render(g)
	if a != b {
		t.Errorf("Render() is not deterministic:\n%s\n---\n%s", a, b)
	}
}
