package engine

import (
	"time"

	"github.com/oshokin/chessclock/internal/domain/clock"
)

// Apply returns the state that follows s after ev.
//
//nolint:cyclop // One case per event keeps the whole machine in one place.
func Apply(s clock.State, ev Event) clock.State {
	switch ev := ev.(type) {
	case Start:
		return start(s, ev.Side, ev.Increment)
	case Pause:
		if s.Phase == clock.Running {
			s.Phase = clock.Paused
		}

		return s
	case Resume:
		if s.Phase == clock.Paused {
			s.Phase = clock.Running
		}

		return s
	case Reset:
		return clock.NewState(ev.Config)
	case Tick:
		return tick(s, ev.Elapsed)
	case SwitchTurn:
		return switchTurn(s, ev.Increment)
	default:
		return s
	}
}

func start(s clock.State, side clock.Side, increment time.Duration) clock.State {
	switch s.Phase {
	case clock.Idle:
		s.ActiveSide = side
		s.Phase = clock.Running
	case clock.Running:
		if side != s.ActiveSide {
			s = endTurn(s, increment)
		}
	case clock.Paused:
		if side != s.ActiveSide {
			s = endTurn(s, increment)
		}

		s.Phase = clock.Running
	case clock.Finished:
	}

	return s
}

func tick(s clock.State, elapsed time.Duration) clock.State {
	if s.Phase != clock.Running || elapsed <= 0 {
		return s
	}

	if s.ActiveSide == clock.Player1 {
		s.Remaining1 -= elapsed
	} else {
		s.Remaining2 -= elapsed
	}

	if s.Exhausted() {
		s.Phase = clock.Finished
		s.AlarmFired = true
	}

	return s
}

func switchTurn(s clock.State, increment time.Duration) clock.State {
	switch s.Phase {
	case clock.Idle:
		// The first move starts the clock and earns nothing.
		s.ActiveSide = s.ActiveSide.Other()
		s.Phase = clock.Running
	case clock.Running:
		s = endTurn(s, increment)
	case clock.Paused, clock.Finished:
	}

	return s
}

// endTurn credits increment to the active side and hands the turn over.
func endTurn(s clock.State, increment time.Duration) clock.State {
	if increment > 0 {
		if s.ActiveSide == clock.Player1 {
			s.Remaining1 += increment
		} else {
			s.Remaining2 += increment
		}
	}

	s.ActiveSide = s.ActiveSide.Other()
	s.Moves++

	return s
}
