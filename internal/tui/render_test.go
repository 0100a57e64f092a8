package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/chessclock/internal/domain/clock"
	"github.com/oshokin/chessclock/internal/session"
)

// newScreen returns an initialised simulation screen of the given size.
func newScreen(t *testing.T, width, height int) tcell.SimulationScreen {
	t.Helper()

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(width, height)

	t.Cleanup(screen.Fini)

	return screen
}

// screenText returns the screen contents as one string per row.
func screenText(screen tcell.SimulationScreen) []string {
	cells, width, height := screen.GetContents()
	rows := make([]string, height)

	for y := range height {
		var b strings.Builder

		for x := range width {
			runes := cells[y*width+x].Runes
			if len(runes) == 0 {
				b.WriteRune(' ')

				continue
			}

			b.WriteRune(runes[0])
		}

		rows[y] = b.String()
	}

	return rows
}

func testUpdate() session.Update {
	cfg := clock.Config{MinutesPlayer1: 5, IncrementSeconds: 3, SoundEnabled: true}

	return session.Update{State: clock.NewState(cfg), Config: cfg}
}

// TestRender_Idle checks labels, large digits and the footer.
func TestRender_Idle(t *testing.T) {
	t.Parallel()

	screen := newScreen(t, 80, 12)
	Render(screen, testUpdate(), false)

	rows := screenText(screen)
	all := strings.Join(rows, "\n")

	require.Contains(t, all, "PLAYER 1")
	require.Contains(t, all, "PLAYER 2")
	require.Contains(t, all, "█")
	require.Contains(t, rows[10], "Ready")
	require.Contains(t, rows[10], "+3s")
	require.Contains(t, rows[11], "[enter] pause/resume")
}

// TestRender_Running checks that the running half is highlighted.
func TestRender_Running(t *testing.T) {
	t.Parallel()

	u := testUpdate()
	u.State.Phase = clock.Running
	u.State.ActiveSide = clock.Player2
	u.State.Moves = 2

	screen := newScreen(t, 80, 12)
	Render(screen, u, false)

	cells, width, _ := screen.GetContents()
	require.Equal(t, styleDefault, cells[0].Style)
	require.Equal(t, styleRunning, cells[width-1].Style)

	rows := screenText(screen)
	require.Contains(t, strings.Join(rows, "\n"), "> PLAYER 2")
	require.Contains(t, rows[10], "player 2 to move")
	require.Contains(t, rows[10], "moves 2")
}

// TestRender_Finished checks the flag message and the blinking halves.
func TestRender_Finished(t *testing.T) {
	t.Parallel()

	u := testUpdate()
	u.State.Phase = clock.Finished
	u.State.Remaining1 = -50 * time.Millisecond
	u.State.AlarmFired = true
	u.Pending = true

	screen := newScreen(t, 100, 12)

	Render(screen, u, false)

	cells, width, _ := screen.GetContents()
	require.Equal(t, styleFlagged, cells[0].Style)
	require.Equal(t, styleDefault, cells[width-1].Style)

	rows := screenText(screen)
	require.Contains(t, rows[10], "player 1 flagged")
	require.Contains(t, rows[10], "new settings apply after reset")

	Render(screen, u, true)

	cells, width, _ = screen.GetContents()
	require.Equal(t, styleInverse, cells[0].Style)
	require.Equal(t, styleInverse, cells[width-1].Style)
}

// TestRender_Narrow checks the plain-text fallback on small terminals.
func TestRender_Narrow(t *testing.T) {
	t.Parallel()

	screen := newScreen(t, 20, 6)
	Render(screen, testUpdate(), false)

	require.Contains(t, strings.Join(screenText(screen), "\n"), "5:00")
}

// TestSideAt checks which half a click lands on.
func TestSideAt(t *testing.T) {
	t.Parallel()

	side, ok := sideAt(80, 24, 10, 5)
	require.True(t, ok)
	require.Equal(t, clock.Player1, side)

	side, ok = sideAt(80, 24, 40, 5)
	require.True(t, ok)
	require.Equal(t, clock.Player2, side)

	_, ok = sideAt(80, 24, 10, 23)
	require.False(t, ok)
}
