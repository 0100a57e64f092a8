package clock

import (
	"time"

	"github.com/google/uuid"
)

// State represents both countdowns at a specific point in time.
type State struct {
	// SessionID changes on every reset.
	SessionID uuid.UUID
	// Remaining1 is the time left on player 1's clock. It may be negative
	// right after the tick that exhausted it.
	Remaining1 time.Duration
	// Remaining2 is the time left on player 2's clock.
	Remaining2 time.Duration
	// ActiveSide is the player whose clock is (or will be) counting down.
	ActiveSide Side
	// Phase is the lifecycle state.
	Phase Phase
	// AlarmFired is set once when the session finishes.
	AlarmFired bool
	// Moves counts completed turns.
	Moves int
}

// NewState returns an idle state with full times derived from cfg.
func NewState(cfg Config) State {
	return State{
		SessionID:  uuid.New(),
		Remaining1: cfg.InitialTime(Player1),
		Remaining2: cfg.InitialTime(Player2),
		ActiveSide: Player1,
		Phase:      Idle,
	}
}

// Remaining returns the time left for the given side.
func (s State) Remaining(side Side) time.Duration {
	if side == Player2 {
		return s.Remaining2
	}

	return s.Remaining1
}

// Exhausted reports whether either side ran out of time.
func (s State) Exhausted() bool {
	return s.Remaining1 <= 0 || s.Remaining2 <= 0
}

// Exhausted1 reports whether player 1 ran out of time.
func (s State) Exhausted1() bool { return s.Remaining1 <= 0 }

// Exhausted2 reports whether player 2 ran out of time.
func (s State) Exhausted2() bool { return s.Remaining2 <= 0 }

// IsRunning reports whether the given side is the one counting down right now.
func (s State) IsRunning(side Side) bool {
	return s.Phase == Running && s.ActiveSide == side
}

// Selectable reports whether pressing for side would be accepted:
// the clock is not finished and side is not the clock already running.
func (s State) Selectable(side Side) bool {
	switch s.Phase {
	case Finished:
		return false
	case Running:
		return s.ActiveSide != side
	default:
		return true
	}
}
