package postgres

import (
	"context"
	"log/slog"

	"github.com/nail-agent/nail/internal/kg"
)

// PreFilterTopK bounds how many nearest-neighbour candidates the store
// hands back to the exact similarity pass.
const PreFilterTopK = 5

// Options returns the [kg.Option]s that wire this store into a
// [kg.KnowledgeGraph]: every newly discovered location is mirrored into
// the store, and [kg.KnowledgeGraph.MostSimilarLocation] consults it for
// an approximate candidate pre-filter ahead of the exact ranking pass.
// Store errors are logged and otherwise ignored — this store is always
// optional, so a transient failure here must never block gameplay.
func (s *Store) Options() []kg.Option {
	return []kg.Option{
		kg.WithNewLocationHook(func(loc *kg.Location) {
			if err := s.Upsert(context.Background(), loc.Name, loc.Description); err != nil {
				slog.Warn("kgstore/postgres: failed to mirror new location", "location", loc.Name, "err", err)
			}
		}),
		kg.WithLocationPreFilter(func(desc string, candidates []*kg.Location) []*kg.Location {
			names, err := s.NearestNames(context.Background(), desc, PreFilterTopK)
			if err != nil {
				slog.Warn("kgstore/postgres: pre-filter query failed, falling back to full scan", "err", err)
				return nil
			}
			wanted := make(map[string]bool, len(names))
			for _, n := range names {
				wanted[n] = true
			}
			narrowed := make([]*kg.Location, 0, len(candidates))
			for _, c := range candidates {
				if wanted[c.Name] {
					narrowed = append(narrowed, c)
				}
			}
			return narrowed
		}),
	}
}
