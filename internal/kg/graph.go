// Package kg implements the agent's shared world model: the
// knowledge graph of locations, entities, the inventory, the
// navigation connection graph, and the set of words the parser has
// rejected. Every decision module reads and mutates a single *KnowledgeGraph
// instance; every mutation method emits a corresponding event onto an
// injected event bus so other modules can react to it on their next
// tick.
package kg

import (
	"sync"

	"github.com/nail-agent/nail/internal/event"
)

// defaultUnrecognizedWords seeds KnowledgeGraph.UnrecognizedWords: verbs
// the parser of nearly every Z-machine/Glulx game accepts but which
// carry no gameplay meaning for this agent.
var defaultUnrecognizedWords = []string{
	"restart", "verbose", "save", "restore", "score", "quit", "moves",
}

// KnowledgeGraph is the agent's single shared world model.
type KnowledgeGraph struct {
	mu sync.Mutex

	bus *event.Bus

	locations      []*Location
	playerLocation *Location
	initLocation   *Location
	inventory      *Location
	connections    *ConnectionGraph

	unrecognizedWords map[string]bool

	similarity func(a, b string) float64
	preFilter  func(desc string, candidates []*Location) []*Location
	onNewLoc   func(loc *Location)
}

// Option configures a KnowledgeGraph at construction time.
type Option func(*KnowledgeGraph)

// WithSimilarity overrides the string-similarity function used by
// MostSimilarLocation (see internal/fuzzy.PartialRatio). Defaults to a
// trivial exact-match comparator so this package has no required
// external dependency.
func WithSimilarity(f func(a, b string) float64) Option {
	return func(g *KnowledgeGraph) { g.similarity = f }
}

// WithLocationPreFilter installs a candidate-narrowing hook run by
// MostSimilarLocation before the exact similarity ranking pass. f
// receives the full candidate set and returns the subset it considers
// worth ranking exactly (e.g. an approximate-nearest-neighbour lookup
// backed by an external embedding store); an empty or nil return falls
// back to the unfiltered candidate set. Absent a pre-filter, every
// candidate is ranked exactly, which remains the default and canonical
// behaviour.
func WithLocationPreFilter(f func(desc string, candidates []*Location) []*Location) Option {
	return func(g *KnowledgeGraph) { g.preFilter = f }
}

// WithNewLocationHook installs a callback invoked with every location
// the first time it is registered via AddLocation, after the
// NewLocation event has been pushed. Used to mirror newly discovered
// locations into an external store without the graph depending on
// that store's package.
func WithNewLocationHook(f func(loc *Location)) Option {
	return func(g *KnowledgeGraph) { g.onNewLoc = f }
}

// New constructs an empty knowledge graph wired to bus.
func New(bus *event.Bus, opts ...Option) *KnowledgeGraph {
	g := &KnowledgeGraph{
		bus:               bus,
		inventory:         NewInventory(),
		connections:       NewConnectionGraph(),
		unrecognizedWords: make(map[string]bool, len(defaultUnrecognizedWords)),
		similarity: func(a, b string) float64 {
			if a == b {
				return 100
			}
			return 0
		},
	}
	for _, w := range defaultUnrecognizedWords {
		g.unrecognizedWords[w] = true
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Connections exposes the navigation connection graph.
func (g *KnowledgeGraph) Connections() *ConnectionGraph { return g.connections }

// Inventory returns the distinguished inventory location.
func (g *KnowledgeGraph) Inventory() *Location { return g.inventory }

// Locations returns every discovered location. The inventory is not
// among them; use Inventory for it.
func (g *KnowledgeGraph) Locations() []*Location {
	return append([]*Location(nil), g.locations...)
}

// PlayerLocation returns the player's current location, or nil before
// the first location has been materialised.
func (g *KnowledgeGraph) PlayerLocation() *Location { return g.playerLocation }

// InitLocation returns the location the player started in.
func (g *KnowledgeGraph) InitLocation() *Location { return g.initLocation }

// AddLocation registers loc if no location with the same name is
// already known, and pushes a NewLocation event. Returns the resident
// location (either loc, or the pre-existing one with that name) and
// whether loc was newly added.
func (g *KnowledgeGraph) AddLocation(loc *Location) (*Location, bool) {
	for _, existing := range g.locations {
		if existing.Name == loc.Name {
			return existing, false
		}
	}
	g.locations = append(g.locations, loc)
	if g.initLocation == nil {
		g.initLocation = loc
	}
	g.push(event.NewLocation{Name: loc.Name})
	if g.onNewLoc != nil {
		g.onNewLoc(loc)
	}
	return loc, true
}

// AddConnection records c via the connection graph and, if newly
// added, pushes a NewConnection event.
func (g *KnowledgeGraph) AddConnection(c Connection) bool {
	added := g.connections.Add(c)
	if added {
		toName := ""
		if c.To != nil {
			toName = c.To.Name
		}
		g.push(event.NewConnection{From: c.From.Name, Action: c.Action, To: toName})
	}
	return added
}

// AddEntity adds e to loc if not already present there, and pushes a
// NewEntity event. Returns whether e was newly added.
func (g *KnowledgeGraph) AddEntity(loc *Location, e *Entity) bool {
	added := loc.AddEntity(e)
	if added {
		g.push(event.NewEntity{Name: e.Name(), Description: e.Description})
	}
	return added
}

// MoveEntity relocates e from `from` to `to`, pushing an EntityMoved
// event. It is a non-fatal no-op if e is not present at `from`.
func (g *KnowledgeGraph) MoveEntity(e *Entity, from, to *Location) {
	if !from.RemoveEntity(e) {
		return
	}
	to.AddEntity(e)
	g.push(event.EntityMoved{Entity: e.Name(), From: from.Name, To: to.Name})
}

// SetPlayerLocation updates the player's current location, pushing a
// LocationChanged event only when the location actually changes.
func (g *KnowledgeGraph) SetPlayerLocation(loc *Location) {
	if g.playerLocation == loc {
		return
	}
	g.playerLocation = loc
	if loc != nil {
		g.push(event.LocationChanged{Name: loc.Name})
	}
}

// AddAttribute attaches attribute a to e, pushing a NewAttribute event
// if it was not already present.
func (g *KnowledgeGraph) AddAttribute(e *Entity, a Attribute) {
	if e.AddAttribute(a) {
		g.push(event.NewAttribute{Entity: e.Name(), Attribute: string(a)})
	}
}

// RecordEntityAction stores pValid/response for actionText on e, and
// pushes a NewActionRecord event exactly once when pValid indicates
// success (> 0.5).
func (g *KnowledgeGraph) RecordEntityAction(e *Entity, actionText string, pValid float64, response string) {
	e.RecordAction(actionText, pValid, response)
	if pValid > 0.5 {
		g.push(event.NewActionRecord{Subject: e.Name(), ActionText: actionText, Result: response})
	}
}

// RecordLocationAction stores pValid/response for actionText on loc,
// with the same NewActionRecord emission rule as RecordEntityAction.
func (g *KnowledgeGraph) RecordLocationAction(loc *Location, actionText string, pValid float64, response string) {
	loc.RecordAction(actionText, pValid, response)
	if pValid > 0.5 {
		g.push(event.NewActionRecord{Subject: loc.Name, ActionText: actionText, Result: response})
	}
}

// MarkUnrecognized adds word to the parser-rejected vocabulary. The set
// only ever grows; a word once rejected by the parser is never removed.
func (g *KnowledgeGraph) MarkUnrecognized(word string) {
	g.unrecognizedWords[word] = true
}

// IsUnrecognized reports whether word has been marked as rejected by
// the parser.
func (g *KnowledgeGraph) IsUnrecognized(word string) bool {
	return g.unrecognizedWords[word]
}

// UnrecognizedWords returns a snapshot of the rejected-word set.
func (g *KnowledgeGraph) UnrecognizedWords() map[string]bool {
	out := make(map[string]bool, len(g.unrecognizedWords))
	for w := range g.unrecognizedWords {
		out[w] = true
	}
	return out
}

// MostSimilarLocation returns the known location whose description is
// the closest match (by the configured similarity function) to desc.
// Candidates are restricted to locations whose Name equals the first
// line of desc; if none match by name, every known location is
// considered. Ties resolve to the first candidate encountered, in
// registration order.
func (g *KnowledgeGraph) MostSimilarLocation(desc string) (*Location, bool) {
	if len(g.locations) == 0 {
		return nil, false
	}

	name := FirstLine(desc)
	candidates := make([]*Location, 0, len(g.locations))
	for _, loc := range g.locations {
		if loc.Name == name {
			candidates = append(candidates, loc)
		}
	}
	if len(candidates) == 0 {
		candidates = g.locations
	}
	if g.preFilter != nil {
		if narrowed := g.preFilter(desc, candidates); len(narrowed) > 0 {
			candidates = narrowed
		}
	}

	var best *Location
	bestScore := -1.0
	for _, loc := range candidates {
		score := g.similarity(loc.Description, desc)
		if score > bestScore {
			bestScore = score
			best = loc
		}
	}
	return best, best != nil
}

// Reset returns the graph to its post-init runtime state: the player
// returns to InitLocation, every location's entities return to their
// own InitLocation, successful action records are dropped everywhere,
// and the inventory is emptied. Discoveries (locations, connections,
// names, attributes, the unrecognized-word set) are preserved, since
// the agent should not have to relearn the map after every death.
func (g *KnowledgeGraph) Reset() {
	g.playerLocation = g.initLocation

	byLocation := make(map[*Location][]*Entity)
	for _, loc := range g.locations {
		byLocation[loc] = append(byLocation[loc], loc.Entities...)
	}
	invEntities := append([]*Entity(nil), g.inventory.Entities...)

	for _, loc := range g.locations {
		loc.Entities = nil
		for text, rec := range loc.ActionRecords {
			if rec.PValid > 0.5 {
				delete(loc.ActionRecords, text)
			}
		}
	}
	g.inventory.Entities = nil

	allEntities := invEntities
	for _, ents := range byLocation {
		allEntities = append(allEntities, ents...)
	}
	for _, e := range allEntities {
		e.resetRuntimeState()
		if e.InitLocation != nil {
			e.InitLocation.AddEntity(e)
		}
	}
}

func (g *KnowledgeGraph) push(e event.Event) {
	if g.bus != nil {
		g.bus.Push(e)
	}
}

// Lock/Unlock expose the graph's mutex to callers (the arbiter) that
// need to guard a broader sequence of reads/writes than a single
// method call, matching the mutex-guarded-struct idiom used throughout
// this codebase.
func (g *KnowledgeGraph) Lock()   { g.mu.Lock() }
func (g *KnowledgeGraph) Unlock() { g.mu.Unlock() }
