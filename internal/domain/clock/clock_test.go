package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestConfigValidate checks the minute and increment boundaries.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.MinutesPlayer1 = 0
	require.ErrorIs(t, cfg.Validate(), ErrInvalidMinutes)

	// Player 2 minutes only matter when they are used.
	cfg = DefaultConfig()
	cfg.MinutesPlayer2 = -3
	require.NoError(t, cfg.Validate())

	cfg.DifferentTimePerPlayer = true
	require.ErrorIs(t, cfg.Validate(), ErrInvalidMinutes)

	cfg = DefaultConfig()
	cfg.IncrementSeconds = -1
	require.ErrorIs(t, cfg.Validate(), ErrInvalidIncrement)

	// Upper bounds keep every starting time representable as a duration.
	cfg = DefaultConfig()
	cfg.MinutesPlayer1 = MaxMinutes
	cfg.IncrementSeconds = MaxIncrementSeconds
	require.NoError(t, cfg.Validate())
	require.Equal(t, 7*24*time.Hour, cfg.InitialTime(Player1))

	cfg.MinutesPlayer1 = MaxMinutes + 1
	require.ErrorIs(t, cfg.Validate(), ErrInvalidMinutes)

	cfg.MinutesPlayer1 = 200_000_000
	require.ErrorIs(t, cfg.Validate(), ErrInvalidMinutes)

	cfg = DefaultConfig()
	cfg.DifferentTimePerPlayer = true
	cfg.MinutesPlayer2 = MaxMinutes + 1
	require.ErrorIs(t, cfg.Validate(), ErrInvalidMinutes)

	cfg = DefaultConfig()
	cfg.IncrementSeconds = MaxIncrementSeconds + 1
	require.ErrorIs(t, cfg.Validate(), ErrInvalidIncrement)
}

// TestConfigInitialTime verifies shared and per-player starting times.
func TestConfigInitialTime(t *testing.T) {
	t.Parallel()

	cfg := Config{MinutesPlayer1: 10, MinutesPlayer2: 3, IncrementSeconds: 5}
	require.Equal(t, 10*time.Minute, cfg.InitialTime(Player1))
	require.Equal(t, 10*time.Minute, cfg.InitialTime(Player2))
	require.Equal(t, 5*time.Second, cfg.Increment())

	cfg.DifferentTimePerPlayer = true
	require.Equal(t, 3*time.Minute, cfg.InitialTime(Player2))
}

// TestNewState verifies a fresh state is idle with full times.
func TestNewState(t *testing.T) {
	t.Parallel()

	a := NewState(DefaultConfig())
	require.Equal(t, Idle, a.Phase)
	require.Equal(t, Player1, a.ActiveSide)
	require.Equal(t, 600*time.Second, a.Remaining1)
	require.Equal(t, 600*time.Second, a.Remaining2)
	require.False(t, a.AlarmFired)
	require.False(t, a.Exhausted())

	b := NewState(DefaultConfig())
	require.NotEqual(t, a.SessionID, b.SessionID)
}

// TestStateSelectable covers which side may be pressed in each phase.
func TestStateSelectable(t *testing.T) {
	t.Parallel()

	s := State{Phase: Running, ActiveSide: Player1, Remaining1: time.Second, Remaining2: time.Second}
	require.False(t, s.Selectable(Player1))
	require.True(t, s.Selectable(Player2))
	require.True(t, s.IsRunning(Player1))
	require.False(t, s.IsRunning(Player2))

	s.Phase = Finished
	require.False(t, s.Selectable(Player2))

	s.Phase = Idle
	require.True(t, s.Selectable(Player1))
}

// TestSideParse checks accepted spellings and the error path.
func TestSideParse(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Side{"player1": Player1, "P1": Player1, " 2 ": Player2, "player2": Player2} {
		got, err := ParseSide(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseSide("white")
	require.ErrorIs(t, err, ErrUnknownSide)

	require.Equal(t, Player2, Player1.Other())
	require.Equal(t, Player1, Player2.Other())
}

// TestParsePhase ensures every phase round-trips through its name.
func TestParsePhase(t *testing.T) {
	t.Parallel()

	for _, p := range []Phase{Idle, Running, Paused, Finished} {
		got, ok := ParsePhase(p.String())
		require.True(t, ok)
		require.Equal(t, p, got)
	}

	_, ok := ParsePhase("stopped")
	require.False(t, ok)
}

// TestFormatRemaining covers both layouts, rounding and clamping.
func TestFormatRemaining(t *testing.T) {
	t.Parallel()

	cases := map[time.Duration]string{
		10 * time.Minute:                "10:00",
		time.Second:                     "0:01",
		1500 * time.Millisecond:         "0:02",
		100 * time.Millisecond:          "0:01",
		0:                               "0:00",
		-300 * time.Millisecond:         "0:00",
		59*time.Minute + 59*time.Second: "59:59",
		time.Hour:                       "1:00:00",
		90*time.Minute + 5*time.Second:  "1:30:05",
		12*time.Hour + 3*time.Second:    "12:00:03",
	}
	for in, want := range cases {
		require.Equal(t, want, FormatRemaining(in), "input %v", in)
	}
}
