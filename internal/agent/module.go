// Package agent implements the arbiter: the single-threaded driver
// that elects one decision module per turn and pumps it until it
// relinquishes control. Individual modules (Examiner, Hoarder,
// Navigator, ...) live in internal/agent/modules and implement the
// [Module] interface declared here.
package agent

import "github.com/nail-agent/nail/internal/event"

// StepResult is what a [Module] returns from one call to Step: a
// non-empty Action means the module wants to submit that command and
// be resumed with the response; Done means the module relinquishes
// control this turn. This explicit state machine stands in for a
// coroutine's "yield Action / return" contract, since Go modules
// cannot suspend mid-function the way a generator can.
type StepResult struct {
	Action Action
	Done   bool
}

// Action is the minimal surface an action value must expose to the
// arbiter: its rendered text. Modules work with the richer
// internal/action.Action; this alias keeps this package free of a
// hard dependency on that package's concrete types for the handful of
// call sites that only need text.
type Action interface {
	Text() string
}

// Module is a cooperative decision module. Exactly one module is "in
// control" at a time; the arbiter pumps it via Step until it reports
// Done, then re-elects.
type Module interface {
	// Name identifies the module for logging and tie-break ordering.
	Name() string
	// ProcessEvent is invoked once per tick, for every event produced
	// since the last tick, for every module — including the one
	// currently in control.
	ProcessEvent(e event.Event)
	// Eagerness reports this module's desire, in [0,1], to take
	// control this turn. Called only when no module is currently
	// active.
	Eagerness() float64
	// Step advances the module's internal state machine. response is
	// the game's reply to the action last returned by Step; on the
	// first call of a turn of control it is the latest observation the
	// arbiter holds. A returned
	// StepResult with Done == false carries the next Action to submit
	// to the environment; Done == true relinquishes control.
	Step(response string) (StepResult, error)
	// Record reports whether the module's most recent action was
	// judged valid, for its internal succ_cnt/fail_cnt bookkeeping.
	Record(success bool)
}
