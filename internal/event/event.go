// Package event implements the agent's per-turn event bus.
//
// Every knowledge-graph mutation — a new location, a new entity, a
// recorded action, a location change — is published as a typed [Event]
// onto a [Bus]. Producers push synchronously during a decision module's
// turn; the [Arbiter] (see package agent) drains the bus into every
// module once per tick and then clears it, so all modules observe the
// same snapshot of what happened during the previous module's control.
//
// The bus is not safe for concurrent use across goroutines — the
// decision core runs every tick on a single goroutine, so no
// synchronisation is needed within a tick.
package event

import "fmt"

// Event is the common interface implemented by every event type pushed
// onto a [Bus]. Message returns a short human-readable summary, used for
// debug logging.
type Event interface {
	Message() string
}

// Bus is an append-only queue of events produced during a single turn.
type Bus struct {
	stream []Event
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Push appends e to the stream. Safe to call only from the single
// decision-core goroutine.
func (b *Bus) Push(e Event) {
	b.stream = append(b.stream, e)
}

// Drain returns every event pushed since the last [Bus.Clear] call, in
// enqueue order. The returned slice aliases internal storage and must
// not be retained past the next [Bus.Clear].
func (b *Bus) Drain() []Event {
	return b.stream
}

// Clear empties the stream.
func (b *Bus) Clear() {
	b.stream = b.stream[:0]
}

// Len returns the number of events currently queued.
func (b *Bus) Len() int {
	return len(b.stream)
}

// NewTransition is generated whenever the environment responds to a
// submitted command.
type NewTransition struct {
	Obs      string
	Action   string
	Score    int
	NewObs   string
	Terminal bool
}

// Message implements [Event].
func (e NewTransition) Message() string {
	return fmt.Sprintf("%q --> %s Score=%d", e.Action, clean(e.NewObs), e.Score)
}

// NewLocation is generated whenever a new location is discovered.
type NewLocation struct {
	Name string
}

// Message implements [Event].
func (e NewLocation) Message() string { return e.Name }

// NewEntity is generated whenever a new entity is discovered.
type NewEntity struct {
	Name        string
	Description string
}

// Message implements [Event].
func (e NewEntity) Message() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Description)
}

// NewActionRecord is generated whenever a successful action is applied.
type NewActionRecord struct {
	Subject    string
	ActionText string
	Result     string
}

// Message implements [Event].
func (e NewActionRecord) Message() string {
	return fmt.Sprintf("%s ==(%s)==> %s", e.Subject, e.ActionText, clean(e.Result))
}

// NewConnection is generated whenever a connection between two
// locations is discovered.
type NewConnection struct {
	From   string
	Action string
	To     string
}

// Message implements [Event].
func (e NewConnection) Message() string {
	return fmt.Sprintf("%s ==(%s)==> %s", e.From, e.Action, e.To)
}

// LocationChanged is generated whenever the player's location changes.
type LocationChanged struct {
	Name string
}

// Message implements [Event].
func (e LocationChanged) Message() string { return e.Name }

// EntityMoved is generated whenever an entity moves between locations.
type EntityMoved struct {
	Entity string
	From   string
	To     string
}

// Message implements [Event].
func (e EntityMoved) Message() string {
	return fmt.Sprintf("%s moved %s -> %s", e.Entity, e.From, e.To)
}

// NewAttribute is generated whenever an entity is given a new attribute.
type NewAttribute struct {
	Entity    string
	Attribute string
}

// Message implements [Event].
func (e NewAttribute) Message() string {
	return fmt.Sprintf("%s is %s", e.Entity, e.Attribute)
}

func clean(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' {
			out = append(out, ' ')
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
