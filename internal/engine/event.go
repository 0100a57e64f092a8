package engine

import (
	"time"

	"github.com/oshokin/chessclock/internal/domain/clock"
)

// Event is an input to Apply.
type Event interface {
	event()
}

// Start activates Side. While running with the other side active it is a
// turn switch and Increment goes to the side ending its turn.
type Start struct {
	Side      clock.Side
	Increment time.Duration
}

// Pause freezes a running clock.
type Pause struct{}

// Resume continues a paused clock on the same side.
type Resume struct{}

// Reset replaces the state with a fresh one derived from Config.
type Reset struct {
	Config clock.Config
}

// Tick charges Elapsed to the active side.
type Tick struct {
	Elapsed time.Duration
}

// SwitchTurn ends the active side's turn, crediting Increment to it.
type SwitchTurn struct {
	Increment time.Duration
}

func (Start) event()      {}
func (Pause) event()      {}
func (Resume) event()     {}
func (Reset) event()      {}
func (Tick) event()       {}
func (SwitchTurn) event() {}
