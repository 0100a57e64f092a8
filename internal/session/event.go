package session

import (
	"time"

	"github.com/oshokin/chessclock/internal/domain/clock"
)

// Event is an input accepted by Controller.Handle.
type Event interface {
	sessionEvent()
}

// SelectSide asks for Side's clock to become the running one.
type SelectSide struct {
	Side clock.Side
}

// KeyPress is a recognised keyboard key: the active side ends its turn.
type KeyPress struct{}

// TogglePause pauses a running clock or resumes a paused one.
type TogglePause struct{}

// ResetRequest starts a new session from the current (or staged) settings.
type ResetRequest struct{}

// SettingsChanged carries a new configuration from the settings surface.
type SettingsChanged struct {
	Config clock.Config
}

// AdjustSettings derives a new configuration from the one the next game
// will use: the staged configuration if any, the active one otherwise.
// Adjust runs on the session goroutine, so concurrent adjustments never
// overwrite each other.
type AdjustSettings struct {
	Adjust func(next clock.Config) (clock.Config, error)
}

// TickElapsed charges Elapsed to the active side.
type TickElapsed struct {
	Elapsed time.Duration
}

// Query reads the current state without changing it.
type Query struct{}

func (SelectSide) sessionEvent()      {}
func (KeyPress) sessionEvent()        {}
func (TogglePause) sessionEvent()     {}
func (ResetRequest) sessionEvent()    {}
func (SettingsChanged) sessionEvent() {}
func (AdjustSettings) sessionEvent()  {}
func (TickElapsed) sessionEvent()     {}
func (Query) sessionEvent()           {}

// Signal is a one-shot notification for subscribers such as the audio player.
type Signal int

const (
	// SignalClick is emitted when a press starts the clock or switches turns.
	SignalClick Signal = iota + 1
	// SignalAlarm is emitted once when a clock runs out.
	SignalAlarm
)

func (s Signal) String() string {
	switch s {
	case SignalClick:
		return "click"
	case SignalAlarm:
		return "alarm"
	default:
		return "unknown"
	}
}

// Update is what the controller reports after every handled event.
type Update struct {
	// State is the state after the event.
	State clock.State
	// Config is the configuration the current session was started with.
	Config clock.Config
	// Pending is true while a settings change waits for the next reset.
	Pending bool
	// Signals lists notifications raised by this event, if any.
	Signals []Signal
}

// Has reports whether u carries sig.
func (u Update) Has(sig Signal) bool {
	for _, s := range u.Signals {
		if s == sig {
			return true
		}
	}

	return false
}
