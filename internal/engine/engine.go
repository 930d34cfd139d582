// Package engine declares the game-environment contract the arbiter
// drives: reset the game, submit a command, observe the result. The
// game interpreter itself is out of scope; only its interface is
// specified here, narrowed to the two operations an interactive-
// fiction environment actually needs. internal/engine/textenv
// implements it over a websocket transport; internal/engine/mock
// implements it in-memory for tests.
package engine

import "context"

// Environment is a parser-based interactive-fiction game the agent can
// drive. A single Environment instance is owned by one playthrough;
// Reset starts (or restarts) it and returns the game's introductory
// text. Step submits one command and returns the game's response, its
// score (environment-defined units, treated as opaque by the agent
// beyond accumulation), and whether the game has reached a terminal
// state.
//
// Implementations must be safe only for sequential use — the decision
// core that drives an Environment is strictly single-threaded.
type Environment interface {
	Reset(ctx context.Context) (obs string, err error)
	Step(ctx context.Context, command string) (obs string, score int, done bool, err error)
	// Close releases any resources (connections, subprocess handles)
	// held by the environment. Safe to call more than once.
	Close() error
}
