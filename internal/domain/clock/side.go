package clock

import (
	"errors"
	"fmt"
	"strings"
)

// Side identifies one of the two players.
type Side int

const (
	// Player1 is the player whose clock is active after a reset.
	Player1 Side = iota
	// Player2 is the opponent.
	Player2
)

// ErrUnknownSide is returned by ParseSide for unrecognised input.
var ErrUnknownSide = errors.New("unknown side")

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == Player1 {
		return Player2
	}

	return Player1
}

func (s Side) String() string {
	switch s {
	case Player1:
		return "player1"
	case Player2:
		return "player2"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// ParseSide accepts "player1", "p1", "1" and the same forms for player 2.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "player1", "p1", "1":
		return Player1, nil
	case "player2", "p2", "2":
		return Player2, nil
	default:
		return Player1, fmt.Errorf("%q: %w", s, ErrUnknownSide)
	}
}

// Phase is the lifecycle state of a session.
type Phase int

const (
	// Idle means the clock was reset and nobody moved yet.
	Idle Phase = iota
	// Running means the active side is counting down.
	Running
	// Paused means the game is frozen and will resume on the same side.
	Paused
	// Finished means one of the clocks ran out.
	Finished
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (Phase, bool) {
	for _, p := range []Phase{Idle, Running, Paused, Finished} {
		if p.String() == s {
			return p, true
		}
	}

	return Idle, false
}
