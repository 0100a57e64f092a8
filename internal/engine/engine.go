package engine

import (
	"time"

	"github.com/oshokin/chessclock/internal/domain/clock"
)

// Engine holds one session's state and mutates it only through Apply.
// It is not safe for concurrent use; the session runner owns it.
type Engine struct {
	state clock.State
}

// New returns an engine reset to cfg. cfg must already be validated.
func New(cfg clock.Config) *Engine {
	return &Engine{state: clock.NewState(cfg)}
}

// Restore returns an engine continuing from a saved state. A state saved
// while running comes back paused, since the wall time in between belongs
// to nobody. An exhausted clock always comes back finished, with the alarm
// already fired, and a finished state with time on both clocks comes back paused.
func Restore(s clock.State) *Engine {
	switch {
	case s.Exhausted():
		s.Phase = clock.Finished
		s.AlarmFired = true
	case s.Phase == clock.Running, s.Phase == clock.Finished:
		s.Phase = clock.Paused
		s.AlarmFired = false
	default:
		s.AlarmFired = false
	}

	return &Engine{state: s}
}

// State returns a copy of the current state.
func (e *Engine) State() clock.State {
	return e.state
}

// Apply feeds ev through the reducer and returns the new state.
func (e *Engine) Apply(ev Event) clock.State {
	e.state = Apply(e.state, ev)

	return e.state
}

// Start activates side, switching turns if the other side was running.
func (e *Engine) Start(side clock.Side, increment time.Duration) clock.State {
	return e.Apply(Start{Side: side, Increment: increment})
}

// Pause freezes a running clock.
func (e *Engine) Pause() clock.State {
	return e.Apply(Pause{})
}

// Resume continues a paused clock.
func (e *Engine) Resume() clock.State {
	return e.Apply(Resume{})
}

// Reset discards the session and starts a new idle one from cfg.
func (e *Engine) Reset(cfg clock.Config) clock.State {
	return e.Apply(Reset{Config: cfg})
}

// Tick charges elapsed to the active side.
func (e *Engine) Tick(elapsed time.Duration) clock.State {
	return e.Apply(Tick{Elapsed: elapsed})
}

// SwitchTurn ends the active side's turn.
func (e *Engine) SwitchTurn(increment time.Duration) clock.State {
	return e.Apply(SwitchTurn{Increment: increment})
}
