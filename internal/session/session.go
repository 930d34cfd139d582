// Package session manages the lifecycle of a single playthrough: the
// step counter and score reported by the environment, and the set of
// closers (environment connection, optional location pre-filter,
// validity classifier) torn down when the run ends.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Info holds metadata about the active playthrough.
type Info struct {
	// ID is a unique, sortable identifier for this playthrough, used to
	// name its knowledge-graph snapshot file.
	ID string

	// GamePath is the path (or URL) of the game being played.
	GamePath string

	// StartedAt is when the playthrough began.
	StartedAt time.Time
}

// Manager tracks exactly one active playthrough at a time. All
// exported methods are safe for concurrent use.
type Manager struct {
	mu     sync.Mutex
	active bool
	info   Info
	steps  int
	score  int

	// closers are called in reverse order during Stop.
	closers []func() error
}

// NewManager returns an empty, inactive Manager.
func NewManager() *Manager {
	return &Manager{}
}

// Start begins a new playthrough. Returns an error if one is already
// active.
func (m *Manager) Start(gamePath string) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active {
		return Info{}, fmt.Errorf("session: a playthrough is already active (id=%s)", m.info.ID)
	}

	now := time.Now().UTC()
	m.info = Info{
		ID:       fmt.Sprintf("run-%s", now.Format("20060102T150405Z")),
		GamePath: gamePath,
		StartedAt: now,
	}
	m.active = true
	m.steps = 0
	m.score = 0
	m.closers = nil

	return m.info, nil
}

// AddCloser registers fn to run (in reverse registration order) when
// Stop is called.
func (m *Manager) AddCloser(fn func() error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closers = append(m.closers, fn)
}

// RecordStep advances the step counter and updates the running score,
// as reported by the environment after a Step call.
func (m *Manager) RecordStep(score int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps++
	m.score = score
}

// Steps returns the number of environment steps taken so far.
func (m *Manager) Steps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.steps
}

// Score returns the most recently reported score.
func (m *Manager) Score() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.score
}

// IsActive reports whether a playthrough is currently running.
func (m *Manager) IsActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Info returns metadata about the active playthrough. Returns the
// zero value if no playthrough is active.
func (m *Manager) Info() Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.info
}

// Stop tears down the playthrough, running every registered closer in
// reverse order and logging (rather than failing on) individual closer
// errors, so one misbehaving closer cannot prevent the rest from
// running.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.active {
		return fmt.Errorf("session: no active playthrough to stop")
	}

	id := m.info.ID
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil {
			slog.Warn("session: closer error", "run_id", id, "index", i, "err", err)
		}
	}

	slog.Info("playthrough stopped", "run_id", id, "steps", m.steps, "score", m.score)

	m.active = false
	m.info = Info{}
	m.steps = 0
	m.score = 0
	m.closers = nil

	return nil
}
