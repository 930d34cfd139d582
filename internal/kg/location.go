package kg

import "strings"

// InventoryName is the distinguished name of the Location that stands
// in for the player's inventory.
const InventoryName = "Inventory"

// Location is a discovered place in the game map. Name is always the
// first line of Description, matching the convention used by every
// parser-IF game for room titles.
type Location struct {
	Name        string
	Description string
	Entities    []*Entity
	// ActionRecords mirrors Entity.ActionRecords: the outcome of
	// actions applied while at this location (principally navigation
	// commands), keyed by rendered action text.
	ActionRecords map[string]ActionRecord
}

// FirstLine returns the first line of a multi-line description, the
// convention used to derive a Location's Name.
func FirstLine(description string) string {
	if i := strings.IndexByte(description, '\n'); i >= 0 {
		return description[:i]
	}
	return description
}

// NewLocation constructs a location from a full description, deriving
// Name from its first line.
func NewLocation(description string) *Location {
	return &Location{
		Name:          FirstLine(description),
		Description:   description,
		ActionRecords: make(map[string]ActionRecord),
	}
}

// NewInventory constructs the distinguished inventory location.
func NewInventory() *Location {
	return &Location{
		Name:          InventoryName,
		Description:   InventoryName,
		ActionRecords: make(map[string]ActionRecord),
	}
}

// AddEntity adds e to this location's entity list if not already
// present (by pointer identity). Returns true if added.
func (l *Location) AddEntity(e *Entity) bool {
	for _, existing := range l.Entities {
		if existing == e {
			return false
		}
	}
	l.Entities = append(l.Entities, e)
	return true
}

// RemoveEntity removes e from this location's entity list. Returns
// true if it was present. Removing an entity that is not present is a
// non-fatal no-op rather than a panic, since a parser-text mismatch
// between two turns should degrade gracefully, not crash the agent.
func (l *Location) RemoveEntity(e *Entity) bool {
	for i, existing := range l.Entities {
		if existing == e {
			l.Entities = append(l.Entities[:i], l.Entities[i+1:]...)
			return true
		}
	}
	return false
}

// EntityByName returns the first entity at this location known by
// name.
func (l *Location) EntityByName(name string) (*Entity, bool) {
	for _, e := range l.Entities {
		if e.HasName(name) {
			return e, true
		}
	}
	return nil, false
}

// EntityByDescription returns the entity at this location whose stored
// description is the best fuzzy match for text, provided the match
// scores at or above minScore (0-100, the partial-ratio convention used
// throughout this package — see internal/fuzzy). similarity is supplied
// by the caller so this package stays free of a fuzzy-matching
// dependency.
func (l *Location) EntityByDescription(text string, minScore float64, similarity func(a, b string) float64) (*Entity, bool) {
	var best *Entity
	bestScore := -1.0
	for _, e := range l.Entities {
		if e.Description == "" {
			continue
		}
		score := similarity(e.Description, text)
		if score > bestScore {
			bestScore = score
			best = e
		}
	}
	if best != nil && bestScore >= minScore {
		return best, true
	}
	return nil, false
}

// RecordAction stores the validity/response pair for the action whose
// rendered text is actionText.
func (l *Location) RecordAction(actionText string, pValid float64, response string) {
	l.ActionRecords[actionText] = ActionRecord{PValid: pValid, Response: response}
}

// ActionRecordFor returns the stored record for actionText, if any.
func (l *Location) ActionRecordFor(actionText string) (ActionRecord, bool) {
	r, ok := l.ActionRecords[actionText]
	return r, ok
}
