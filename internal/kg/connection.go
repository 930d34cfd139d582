package kg

import "sort"

// Connection records that issuing Action at From location produced a
// move to To (or, when To is nil, a known-failed direction). Message
// is the response text that confirmed (or denied) the move.
type Connection struct {
	From    *Location
	Action  string
	To      *Location
	Message string
}

// Equal reports whether c and other describe the same (from, action,
// to) triple.
func (c Connection) Equal(other Connection) bool {
	return c.From == other.From && c.Action == other.Action && c.To == other.To
}

// ConnectionGraph is a directed multigraph of locations keyed by
// navigation command text. It maintains both outgoing and incoming
// adjacency so reverse lookups (what leads here) are as cheap as
// forward ones.
type ConnectionGraph struct {
	outgoing map[*Location][]Connection
	incoming map[*Location][]Connection
	all      []Connection
}

// NewConnectionGraph returns an empty graph.
func NewConnectionGraph() *ConnectionGraph {
	return &ConnectionGraph{
		outgoing: make(map[*Location][]Connection),
		incoming: make(map[*Location][]Connection),
	}
}

// Add inserts c if no equal connection (by (from, action, to)) already
// exists. Returns true if the connection was newly added.
func (g *ConnectionGraph) Add(c Connection) bool {
	for _, existing := range g.outgoing[c.From] {
		if existing.Equal(c) {
			return false
		}
	}
	g.outgoing[c.From] = append(g.outgoing[c.From], c)
	if c.To != nil {
		g.incoming[c.To] = append(g.incoming[c.To], c)
	}
	g.all = append(g.all, c)
	return true
}

// Navigate returns the destination of action from loc, if known. A
// connection with To == nil (a known-failed direction) reports found
// with a nil destination.
func (g *ConnectionGraph) Navigate(loc *Location, action string) (*Location, bool) {
	for _, c := range g.outgoing[loc] {
		if c.Action == action {
			return c.To, true
		}
	}
	return nil, false
}

// Outgoing returns every connection recorded from loc.
func (g *ConnectionGraph) Outgoing(loc *Location) []Connection {
	return g.outgoing[loc]
}

// Incoming returns every connection recorded into loc.
func (g *ConnectionGraph) Incoming(loc *Location) []Connection {
	return g.incoming[loc]
}

// ShortestPath returns the sequence of actions to take to travel from
// `from` to `to`, using a breadth-first search over the outgoing
// adjacency (shortest in edge count). Among equal-length paths the
// lexicographically smallest sequence of action texts is returned, to
// keep the result deterministic. Returns ok=false if no path exists.
func (g *ConnectionGraph) ShortestPath(from, to *Location) (path []string, ok bool) {
	if from == to {
		return nil, true
	}

	type frame struct {
		loc  *Location
		path []string
	}

	visited := map[*Location]bool{from: true}
	queue := []frame{{loc: from}}

	var best []string
	found := false

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		conns := append([]Connection(nil), g.outgoing[cur.loc]...)
		sort.Slice(conns, func(i, j int) bool { return conns[i].Action < conns[j].Action })

		for _, c := range conns {
			if c.To == nil {
				continue
			}
			next := append(append([]string(nil), cur.path...), c.Action)
			if c.To == to {
				if !found || lessPath(next, best) {
					best = next
					found = true
				}
				continue
			}
			if visited[c.To] {
				continue
			}
			visited[c.To] = true
			queue = append(queue, frame{loc: c.To, path: next})
		}
		if found {
			// Any further frames in the queue are strictly longer
			// (BFS layer order), so the first found path at this
			// layer is already shortest; still drain same-layer
			// ties for lexicographic determinism.
		}
	}

	return best, found
}

func lessPath(a, b []string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
