// Package action implements the command model: a small tagged union of
// "things the agent can tell the game to do," each able to render
// itself to the literal text submitted to the environment and to apply
// its effect to the shared knowledge graph once confirmed valid.
//
// Two actions are considered equal exactly when their rendered text is
// equal; Text is therefore also the canonical map key used everywhere
// an action needs to be recorded (see internal/kg.Entity.ActionRecords).
package action

import (
	"fmt"
	"strings"

	"github.com/nail-agent/nail/internal/kg"
)

// Action is the common interface implemented by every command variant.
type Action interface {
	// Text renders the action to the exact string submitted to the
	// environment. It is also the action's hash/equality key.
	Text() string
	// Apply mutates the knowledge graph once the action has been
	// confirmed successful. Most variants are side-effecting; a few
	// (Examine, bare Nav) are no-ops by design, since their graph
	// mutation is instead performed explicitly by the owning module.
	Apply(g *kg.KnowledgeGraph) error
}

// Validatable is implemented by actions that know how to judge their
// own success from the response text, bypassing the learned validity
// classifier. Most variants do not implement it, deferring entirely to
// internal/validity.
type Validatable interface {
	Validate(response string) (p float64, ok bool)
}

// Standalone is a bare verb phrase with no entity arguments, e.g.
// "look" or "yes".
type Standalone struct {
	Verb string
}

// Text implements [Action].
func (a Standalone) Text() string { return a.Verb }

// Apply implements [Action]. A standalone command carries no
// entity-specific effect to apply.
func (a Standalone) Apply(*kg.KnowledgeGraph) error { return nil }

// Single is a verb applied to exactly one entity, e.g. "take lamp".
type Single struct {
	Verb   string
	Entity *kg.Entity
}

// Text implements [Action].
func (a Single) Text() string { return a.Verb + " " + a.Entity.Name() }

// Apply implements [Action]. The generic Single variant carries no
// built-in effect; specialised constructors below (Take, Open, ...)
// override this behaviour.
func (a Single) Apply(*kg.KnowledgeGraph) error { return nil }

// Double is a verb applied to two entities joined by a preposition,
// e.g. "unlock door with key".
type Double struct {
	Verb    string
	Entity1 *kg.Entity
	Prep    string
	Entity2 *kg.Entity
}

// Text implements [Action].
func (a Double) Text() string {
	return fmt.Sprintf("%s %s %s %s", a.Verb, a.Entity1.Name(), a.Prep, a.Entity2.Name())
}

// Apply implements [Action]. The generic Double variant carries no
// built-in effect.
func (a Double) Apply(*kg.KnowledgeGraph) error { return nil }

// Nav is a standalone action that carries navigational semantics.
// Movement itself is confirmed and applied by the Navigator module
// (see internal/agent/modules), which compares the response text
// against known locations before mutating player_location — so Nav's
// own Apply is a no-op, matching the "graph-mutating apply" being
// performed out of band by the module rather than by the action
// value itself.
type Nav struct {
	Direction string
}

// Text implements [Action].
func (a Nav) Text() string { return a.Direction }

// Apply implements [Action].
func (a Nav) Apply(*kg.KnowledgeGraph) error { return nil }

// Take moves Entity from the player's current location into the
// inventory.
type Take struct {
	Entity *kg.Entity
}

// Text implements [Action].
func (a Take) Text() string { return "take " + a.Entity.Name() }

// Apply implements [Action].
func (a Take) Apply(g *kg.KnowledgeGraph) error {
	from := g.PlayerLocation()
	if from == nil {
		return nil
	}
	g.MoveEntity(a.Entity, from, g.Inventory())
	return nil
}

// Validate implements [Validatable]: "taken" or "already" anywhere in
// the response (case-insensitively) confirms success; anything else
// is treated as a failed take.
func (a Take) Validate(response string) (float64, bool) {
	lower := strings.ToLower(response)
	if strings.Contains(lower, "taken") || strings.Contains(lower, "already") {
		return 1, true
	}
	return 0, true
}

// Drop moves Entity from the inventory into the player's current
// location.
type Drop struct {
	Entity *kg.Entity
}

// Text implements [Action].
func (a Drop) Text() string { return "drop " + a.Entity.Name() }

// Apply implements [Action].
func (a Drop) Apply(g *kg.KnowledgeGraph) error {
	to := g.PlayerLocation()
	if to == nil {
		return nil
	}
	g.MoveEntity(a.Entity, g.Inventory(), to)
	return nil
}

// Validate implements [Validatable]: "dropped" anywhere in the
// response (case-insensitively) confirms success; anything else is
// treated as a failed drop.
func (a Drop) Validate(response string) (float64, bool) {
	if strings.Contains(strings.ToLower(response), "dropped") {
		return 1, true
	}
	return 0, true
}

// Open sets Entity's state to open.
type Open struct {
	Entity *kg.Entity
}

// Text implements [Action].
func (a Open) Text() string { return "open " + a.Entity.Name() }

// Apply implements [Action].
func (a Open) Apply(g *kg.KnowledgeGraph) error {
	a.Entity.State.EnableOpenable(false)
	*a.Entity.State.IsOpen = true
	g.AddAttribute(a.Entity, kg.AttrOpenable)
	return nil
}

// Close sets Entity's state to closed.
type Close struct {
	Entity *kg.Entity
}

// Text implements [Action].
func (a Close) Text() string { return "close " + a.Entity.Name() }

// Apply implements [Action].
func (a Close) Apply(g *kg.KnowledgeGraph) error {
	a.Entity.State.EnableOpenable(true)
	*a.Entity.State.IsOpen = false
	g.AddAttribute(a.Entity, kg.AttrOpenable)
	return nil
}

// Lock sets Entity's state to locked.
type Lock struct {
	Entity *kg.Entity
}

// Text implements [Action].
func (a Lock) Text() string { return "lock " + a.Entity.Name() }

// Apply implements [Action].
func (a Lock) Apply(g *kg.KnowledgeGraph) error {
	a.Entity.State.EnableLockable(false)
	*a.Entity.State.IsLocked = true
	g.AddAttribute(a.Entity, kg.AttrLockable)
	return nil
}

// Unlock sets Entity's state to unlocked.
type Unlock struct {
	Entity *kg.Entity
}

// Text implements [Action].
func (a Unlock) Text() string { return "unlock " + a.Entity.Name() }

// Apply implements [Action].
func (a Unlock) Apply(g *kg.KnowledgeGraph) error {
	a.Entity.State.EnableLockable(true)
	*a.Entity.State.IsLocked = false
	g.AddAttribute(a.Entity, kg.AttrLockable)
	return nil
}

// LockWith locks Entity using Key as the required key item. Both
// entities are retained on the action value itself, rather than
// split across single-argument helper constructors. Key appears only
// in Text; Apply mutates Entity's state and does not read Key.
type LockWith struct {
	Entity *kg.Entity
	Key    *kg.Entity
}

// Text implements [Action].
func (a LockWith) Text() string {
	return "lock " + a.Entity.Name() + " with " + a.Key.Name()
}

// Apply implements [Action].
func (a LockWith) Apply(g *kg.KnowledgeGraph) error {
	a.Entity.State.EnableLockable(false)
	*a.Entity.State.IsLocked = true
	g.AddAttribute(a.Entity, kg.AttrLockable)
	return nil
}

// UnlockWith unlocks Entity using Key as the required key item.
type UnlockWith struct {
	Entity *kg.Entity
	Key    *kg.Entity
}

// Text implements [Action].
func (a UnlockWith) Text() string {
	return "unlock " + a.Entity.Name() + " with " + a.Key.Name()
}

// Apply implements [Action].
func (a UnlockWith) Apply(g *kg.KnowledgeGraph) error {
	a.Entity.State.EnableLockable(true)
	*a.Entity.State.IsLocked = false
	g.AddAttribute(a.Entity, kg.AttrLockable)
	return nil
}

// TurnOn sets Entity's state to on.
type TurnOn struct {
	Entity *kg.Entity
}

// Text implements [Action].
func (a TurnOn) Text() string { return "turn on " + a.Entity.Name() }

// Apply implements [Action].
func (a TurnOn) Apply(g *kg.KnowledgeGraph) error {
	a.Entity.State.EnableSwitchable(false)
	*a.Entity.State.IsOn = true
	g.AddAttribute(a.Entity, kg.AttrSwitchable)
	return nil
}

// TurnOff sets Entity's state to off.
type TurnOff struct {
	Entity *kg.Entity
}

// Text implements [Action].
func (a TurnOff) Text() string { return "turn off " + a.Entity.Name() }

// Apply implements [Action].
func (a TurnOff) Apply(g *kg.KnowledgeGraph) error {
	a.Entity.State.EnableSwitchable(true)
	*a.Entity.State.IsOn = false
	g.AddAttribute(a.Entity, kg.AttrSwitchable)
	return nil
}

// Consume eats or drinks Entity, removing it from wherever it
// currently resides (inventory or the player's location).
type Consume struct {
	Entity *kg.Entity
}

// Text implements [Action].
func (a Consume) Text() string { return "eat " + a.Entity.Name() }

// Apply implements [Action].
func (a Consume) Apply(g *kg.KnowledgeGraph) error {
	g.Inventory().RemoveEntity(a.Entity)
	if loc := g.PlayerLocation(); loc != nil {
		loc.RemoveEntity(a.Entity)
	}
	return nil
}

// Examine is a no-op at apply time: all state mutation and entity
// creation triggered by an examine response is performed explicitly by
// the Examiner module, not by this action value.
type Examine struct {
	Entity *kg.Entity
}

// Text implements [Action].
func (a Examine) Text() string { return "examine " + a.Entity.Name() }

// Apply implements [Action].
func (a Examine) Apply(*kg.KnowledgeGraph) error { return nil }

// MoveItem relocates Entity from From to To, e.g. "put lamp in case".
type MoveItem struct {
	Entity *kg.Entity
	From   *kg.Location
	To     *kg.Location
	Verb   string
	Prep   string
	Dest   *kg.Entity
}

// Text implements [Action].
func (a MoveItem) Text() string {
	verb := a.Verb
	if verb == "" {
		verb = "put"
	}
	prep := a.Prep
	if prep == "" {
		prep = "in"
	}
	return fmt.Sprintf("%s %s %s %s", verb, a.Entity.Name(), prep, a.Dest.Name())
}

// Apply implements [Action].
func (a MoveItem) Apply(g *kg.KnowledgeGraph) error {
	if a.From == nil || a.To == nil {
		return nil
	}
	g.MoveEntity(a.Entity, a.From, a.To)
	return nil
}

// StripTrailingThe removes a literal trailing " the" from a verb
// phrase, e.g. turning an attribute-detection verb like "pick up the"
// back into the bare "pick up" used as an exclusion key.
func StripTrailingThe(phrase string) string {
	return strings.TrimSuffix(phrase, " the")
}
