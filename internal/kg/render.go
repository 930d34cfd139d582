package kg

import (
	"fmt"
	"sort"
	"strings"
)

// Render produces the plain-text snapshot written to a playthrough's
// `.kng` file: every discovered location with its description, the
// entities and action records observed there, and the navigation
// connections discovered out of it. Output is deterministic (locations
// and connections are sorted by name/action) so two renders of the
// same graph state are byte-identical.
func Render(g *KnowledgeGraph) string {
	var sb strings.Builder

	locs := append([]*Location(nil), g.Locations()...)
	sort.Slice(locs, func(i, j int) bool { return locs[i].Name < locs[j].Name })

	for _, loc := range locs {
		fmt.Fprintf(&sb, "== %s ==\n", loc.Name)
		sb.WriteString(loc.Description)
		sb.WriteString("\n")

		if len(loc.Entities) > 0 {
			names := make([]string, 0, len(loc.Entities))
			for _, e := range loc.Entities {
				names = append(names, e.Name())
			}
			sort.Strings(names)
			fmt.Fprintf(&sb, "entities: %s\n", strings.Join(names, ", "))
		}

		conns := append([]Connection(nil), g.Connections().Outgoing(loc)...)
		sort.Slice(conns, func(i, j int) bool { return conns[i].Action < conns[j].Action })
		for _, c := range conns {
			if c.To == nil {
				fmt.Fprintf(&sb, "  %s -> (blocked)\n", c.Action)
				continue
			}
			fmt.Fprintf(&sb, "  %s -> %s\n", c.Action, c.To.Name)
		}

		if len(loc.ActionRecords) > 0 {
			texts := make([]string, 0, len(loc.ActionRecords))
			for t := range loc.ActionRecords {
				texts = append(texts, t)
			}
			sort.Strings(texts)
			for _, t := range texts {
				r := loc.ActionRecords[t]
				fmt.Fprintf(&sb, "  action %q: p_valid=%.2f\n", t, r.PValid)
			}
		}

		sb.WriteString("\n")
	}

	return sb.String()
}
