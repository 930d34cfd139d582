package action

import "github.com/nail-agent/nail/internal/kg"

// Constructor builds a single-entity action for a given entity. The
// affordance scorer (internal/affordance) uses the catalogue below to
// turn a high-probability attribute into concrete candidate actions.
type Constructor func(e *kg.Entity) Action

// KnownActionExtractionThreshold is the per-attribute probability
// threshold above which the affordance scorer emits this attribute's
// known actions outright. Portable uses 0.0 (always emit Take/Drop
// candidates once portability is even weakly suspected); every other
// attribute defaults to 0.15.
func KnownActionExtractionThreshold(a kg.Attribute) float64 {
	if a == kg.AttrPortable {
		return 0.0
	}
	return 0.15
}

// Catalogue maps each process-wide attribute to the action
// constructors it affords.
var Catalogue = map[kg.Attribute][]Constructor{
	kg.AttrPortable: {
		func(e *kg.Entity) Action { return Take{Entity: e} },
		func(e *kg.Entity) Action { return Drop{Entity: e} },
	},
	kg.AttrEdible: {
		func(e *kg.Entity) Action { return Consume{Entity: e} },
	},
	kg.AttrOpenable: {
		func(e *kg.Entity) Action { return Open{Entity: e} },
		func(e *kg.Entity) Action { return Close{Entity: e} },
	},
	kg.AttrLockable: {
		func(e *kg.Entity) Action { return Lock{Entity: e} },
		func(e *kg.Entity) Action { return Unlock{Entity: e} },
	},
	kg.AttrSwitchable: {
		func(e *kg.Entity) Action { return TurnOn{Entity: e} },
		func(e *kg.Entity) Action { return TurnOff{Entity: e} },
	},
	kg.AttrMoveable: {
		func(e *kg.Entity) Action { return Single{Verb: "move", Entity: e} },
		func(e *kg.Entity) Action { return Single{Verb: "push", Entity: e} },
	},
	kg.AttrFlammable: {
		func(e *kg.Entity) Action { return Single{Verb: "burn", Entity: e} },
	},
	kg.AttrContainer: {
		func(e *kg.Entity) Action { return Single{Verb: "look in", Entity: e} },
	},
	kg.AttrPerson: {
		func(e *kg.Entity) Action { return Single{Verb: "talk to", Entity: e} },
	},
	kg.AttrEnemy: {
		func(e *kg.Entity) Action { return Single{Verb: "attack", Entity: e} },
	},
}
