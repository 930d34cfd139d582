package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/nail-agent/nail/internal/event"
	"github.com/nail-agent/nail/internal/kg"
	"github.com/nail-agent/nail/internal/kgstore/postgres"
)

func newTestBus() *event.Bus { return event.NewBus() }

// testDSN returns the test database DSN from the environment, or skips the
// test if NAIL_TEST_POSTGRES_DSN is not set. Unlike the unit tests in
// embed_test.go, everything in this file requires a live PostgreSQL
// instance with the pgvector extension installed.
func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("NAIL_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("NAIL_TEST_POSTGRES_DSN not set — skipping PostgreSQL integration tests")
	}
	return dsn
}

func newTestStore(t *testing.T) *postgres.Store {
	t.Helper()
	ctx := context.Background()
	store, err := postgres.Open(ctx, testDSN(t), postgres.Dimensions)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func TestStore_OpenRejectsWrongDimensions(t *testing.T) {
	t.Parallel()

	_, err := postgres.Open(context.Background(), "postgres://unused", 99)
	if err == nil {
		t.Fatal("expected an error for a mismatched embedding dimension")
	}
}

func TestStore_UpsertAndNearestNames(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	locations := map[string]string{
		"Cellar":   "A dimly lit cellar. There is a trap door here.",
		"Mountain": "You are standing on top of a great mountain peak.",
		"Kitchen":  "A small kitchen with a wood stove.",
	}
	for name, desc := range locations {
		if err := store.Upsert(ctx, name, desc); err != nil {
			t.Fatalf("Upsert(%q): %v", name, err)
		}
	}

	names, err := store.NearestNames(ctx, "A cellar, dimly lit, with a trap door.", 1)
	if err != nil {
		t.Fatalf("NearestNames: %v", err)
	}
	if len(names) != 1 || names[0] != "Cellar" {
		t.Errorf("NearestNames = %v, want [Cellar]", names)
	}
}

func TestStore_OptionsNarrowCandidates(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	bus := newTestBus()
	g := kg.New(bus, store.Options()...)

	cellar, _ := g.AddLocation(kg.NewLocation("Cellar\nA dimly lit cellar. There is a trap door here."))
	g.AddLocation(kg.NewLocation("Mountain\nYou are standing on top of a great mountain peak."))

	best, ok := g.MostSimilarLocation("Cellar\nA cellar, dimly lit, with a trap door.")
	if !ok {
		t.Fatal("MostSimilarLocation found nothing")
	}
	if best != cellar {
		t.Errorf("MostSimilarLocation = %v, want %v", best, cellar)
	}
}
