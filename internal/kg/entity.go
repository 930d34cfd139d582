package kg

// Attribute names an inherent property of an entity that the affordance
// catalogue can afford actions for. The set is process-wide and fixed;
// new attributes are not discovered at runtime, only attached to
// entities.
type Attribute string

// The fixed attribute vocabulary, unchanged across every game.
const (
	AttrPortable  Attribute = "portable"
	AttrEdible    Attribute = "edible"
	AttrMoveable  Attribute = "moveable"
	AttrSwitchable Attribute = "switchable"
	AttrFlammable Attribute = "flammable"
	AttrOpenable  Attribute = "openable"
	AttrLockable  Attribute = "lockable"
	AttrContainer Attribute = "container"
	AttrPerson    Attribute = "person"
	AttrEnemy     Attribute = "enemy"
)

// EntityState is the mutable tri-state boolean bag an entity carries.
// A nil pointer field means the predicate does not apply to this
// entity at all (e.g. a rock has no IsOpen); a non-nil pointer carries
// the current value.
type EntityState struct {
	IsOpen   *bool
	IsLocked *bool
	IsOn     *bool
	Exists   bool
}

// NewEntityState returns a state with Exists set and every tri-state
// pointer nil.
func NewEntityState() EntityState {
	return EntityState{Exists: true}
}

func boolPtr(b bool) *bool { return &b }

// Openable reports whether the entity's state tracks an open/closed
// tri-state at all.
func (s EntityState) Openable() bool { return s.IsOpen != nil }

// Lockable reports whether the entity's state tracks a locked tri-state.
func (s EntityState) Lockable() bool { return s.IsLocked != nil }

// Switchable reports whether the entity's state tracks an on/off
// tri-state.
func (s EntityState) Switchable() bool { return s.IsOn != nil }

// EnableOpenable gives the state an open/closed tri-state, initialised
// to the value of open, if it does not already have one.
func (s *EntityState) EnableOpenable(open bool) {
	if s.IsOpen == nil {
		s.IsOpen = boolPtr(open)
	}
}

// EnableLockable gives the state a locked tri-state, if it does not
// already have one.
func (s *EntityState) EnableLockable(locked bool) {
	if s.IsLocked == nil {
		s.IsLocked = boolPtr(locked)
	}
}

// EnableSwitchable gives the state an on/off tri-state, if it does not
// already have one.
func (s *EntityState) EnableSwitchable(on bool) {
	if s.IsOn == nil {
		s.IsOn = boolPtr(on)
	}
}

// ActionRecord is the outcome of the last time an action's text was
// submitted against an entity or location: the validity detector's
// estimate and the raw game response.
type ActionRecord struct {
	PValid   float64
	Response string
}

// Entity is a thing the agent has discovered in the game world.
// Entities are owned by exactly one [Location] (or the inventory) at a
// time but are referenced by pointer everywhere else in the graph, so
// two entities may share a name without being confused for each other.
type Entity struct {
	// Names holds every string the agent has used to refer to this
	// entity. Names[0] is the primary name. Non-empty by invariant.
	Names []string
	// Description is the last `examine` response recorded for this
	// entity, or empty if never examined.
	Description string
	// ActionRecords is keyed by an action's rendered text (see
	// internal/action.Action.Text): two actions are treated as the same
	// record if and only if their rendered text matches, expressed here
	// as a plain string key so this package does not need to import the
	// action package.
	ActionRecords map[string]ActionRecord
	// Contained holds entities nested inside this one (e.g. items in a
	// container).
	Contained []*Entity
	State     EntityState
	Attributes map[Attribute]bool
	// InitLocation is the location this entity is reset to on
	// KnowledgeGraph.Reset.
	InitLocation *Location
}

// NewEntity constructs an entity with primary name and description,
// owned initially by loc.
func NewEntity(name, description string, loc *Location) *Entity {
	return &Entity{
		Names:         []string{name},
		Description:   description,
		ActionRecords: make(map[string]ActionRecord),
		State:         NewEntityState(),
		Attributes:    make(map[Attribute]bool),
		InitLocation:  loc,
	}
}

// Name returns the entity's primary name.
func (e *Entity) Name() string {
	if len(e.Names) == 0 {
		return ""
	}
	return e.Names[0]
}

// HasName reports whether name is among the entity's known names.
func (e *Entity) HasName(name string) bool {
	for _, n := range e.Names {
		if n == name {
			return true
		}
	}
	return false
}

// AddName records an additional way to refer to this entity. A name
// shorter than the current primary name is promoted to the front;
// otherwise it is appended. Duplicate names are ignored.
func (e *Entity) AddName(name string) {
	if e.HasName(name) {
		return
	}
	if len(e.Names) == 0 || len(name) < len(e.Names[0]) {
		e.Names = append([]string{name}, e.Names...)
		return
	}
	e.Names = append(e.Names, name)
}

// HasAttribute reports whether the entity carries attribute a.
func (e *Entity) HasAttribute(a Attribute) bool {
	return e.Attributes[a]
}

// AddAttribute attaches attribute a to the entity. Returns true if the
// attribute was newly added (false if already present), so callers can
// decide whether to emit a NewAttribute event.
func (e *Entity) AddAttribute(a Attribute) bool {
	if e.Attributes[a] {
		return false
	}
	e.Attributes[a] = true
	return true
}

// RecordAction stores the validity/response pair for the action whose
// rendered text is actionText.
func (e *Entity) RecordAction(actionText string, pValid float64, response string) {
	e.ActionRecords[actionText] = ActionRecord{PValid: pValid, Response: response}
}

// ActionRecordFor returns the stored record for actionText, if any.
func (e *Entity) ActionRecordFor(actionText string) (ActionRecord, bool) {
	r, ok := e.ActionRecords[actionText]
	return r, ok
}

// resetRuntimeState restores the entity to its post-discovery state: it
// keeps its names, description, and attributes (those are permanent
// discoveries) but drops successful action records, as happens
// whenever the game restarts after death. The tri-state booleans in
// State are left as they are.
func (e *Entity) resetRuntimeState() {
	for text, rec := range e.ActionRecords {
		if rec.PValid > 0.5 {
			delete(e.ActionRecords, text)
		}
	}
}
