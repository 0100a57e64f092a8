package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oshokin/chessclock/internal/domain/clock"
	"github.com/oshokin/chessclock/internal/session"
)

// controlsText is the help line shown under the clocks.
const controlsText = "[space/letters] switch  [enter] pause/resume  [ctrl+r] reset  [esc] quit  [click] end your turn"

// footerRows is the number of rows below the two clock halves.
const footerRows = 2

var (
	styleDefault  = tcell.StyleDefault
	styleRunning  = tcell.StyleDefault.Background(tcell.ColorDarkGreen).Foreground(tcell.ColorWhite)
	stylePaused   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleFlagged  = tcell.StyleDefault.Background(tcell.ColorDarkRed).Foreground(tcell.ColorWhite)
	styleInverse  = tcell.StyleDefault.Reverse(true)
	styleStatus   = tcell.StyleDefault.Bold(true)
	styleControls = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// area is a rectangle of screen cells.
type area struct {
	x, y, w, h int
}

// contains reports whether the cell (x, y) lies inside a.
func (a area) contains(x, y int) bool {
	return x >= a.x && x < a.x+a.w && y >= a.y && y < a.y+a.h
}

// layout splits a width x height screen into the two player halves.
func layout(width, height int) (area, area) {
	clockHeight := max(height-footerRows, 1)
	left := width / 2

	return area{x: 0, y: 0, w: left, h: clockHeight},
		area{x: left, y: 0, w: width - left, h: clockHeight}
}

// sideAt returns the half under the cell (x, y).
func sideAt(width, height, x, y int) (clock.Side, bool) {
	p1, p2 := layout(width, height)

	switch {
	case p1.contains(x, y):
		return clock.Player1, true
	case p2.contains(x, y):
		return clock.Player2, true
	default:
		return clock.Player1, false
	}
}

// Render draws u on screen. blink alternates the finished display.
func Render(screen tcell.Screen, u session.Update, blink bool) {
	screen.Clear()

	width, height := screen.Size()
	p1, p2 := layout(width, height)

	drawHalf(screen, p1, u.State, clock.Player1, blink)
	drawHalf(screen, p2, u.State, clock.Player2, blink)

	drawLine(screen, 0, height-2, width, statusText(u), styleStatus)
	drawLine(screen, 0, height-1, width, controlsText, styleControls)

	screen.Show()
}

// halfStyle picks the colours of one player's half.
func halfStyle(s clock.State, side clock.Side, blink bool) tcell.Style {
	switch s.Phase {
	case clock.Running:
		if s.ActiveSide == side {
			return styleRunning
		}
	case clock.Paused:
		if s.ActiveSide == side {
			return stylePaused
		}
	case clock.Finished:
		if s.Remaining(side) <= 0 {
			if blink {
				return styleInverse
			}

			return styleFlagged
		}

		if blink {
			return styleInverse
		}
	case clock.Idle:
	}

	return styleDefault
}

func drawHalf(screen tcell.Screen, a area, s clock.State, side clock.Side, blink bool) {
	style := halfStyle(s, side, blink)

	for y := a.y; y < a.y+a.h; y++ {
		for x := a.x; x < a.x+a.w; x++ {
			screen.SetContent(x, y, ' ', nil, style)
		}
	}

	label := fmt.Sprintf("PLAYER %d", int(side)+1)
	if s.IsRunning(side) {
		label = "> " + label
	}

	text := clock.FormatRemaining(s.Remaining(side))
	big := bigText(text)
	bigWidth := runewidth.StringWidth(big[0])

	// Label, a blank row, then the time.
	top := a.y + max((a.h-glyphHeight-2)/2, 0)
	drawCentered(screen, a, top, label, style)

	if bigWidth > a.w || a.h < glyphHeight+2 {
		drawCentered(screen, a, top+1, text, style)

		return
	}

	for i, row := range big {
		drawCentered(screen, a, top+2+i, row, style)
	}
}

func drawCentered(screen tcell.Screen, a area, y int, text string, style tcell.Style) {
	if y < a.y || y >= a.y+a.h {
		return
	}

	x := a.x + max((a.w-runewidth.StringWidth(text))/2, 0)
	drawLine(screen, x, y, a.x+a.w-x, text, style)
}

// drawLine writes text from (x, y), clipped to width cells.
func drawLine(screen tcell.Screen, x, y, width int, text string, style tcell.Style) {
	if y < 0 {
		return
	}

	col := 0

	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if col+w > width {
			return
		}

		screen.SetContent(x+col, y, r, nil, style)
		col += w
	}
}

// statusText is the line describing the session.
func statusText(u session.Update) string {
	s := u.State

	var b strings.Builder

	switch s.Phase {
	case clock.Idle:
		b.WriteString("Ready: press a key or click your half to start")
	case clock.Running:
		fmt.Fprintf(&b, "Running: player %d to move", int(s.ActiveSide)+1)
	case clock.Paused:
		b.WriteString("Paused: press enter to resume")
	case clock.Finished:
		b.WriteString(finishedText(s))
	}

	fmt.Fprintf(&b, "  |  moves %d", s.Moves)

	if u.Config.IncrementSeconds > 0 {
		fmt.Fprintf(&b, "  |  +%ds", u.Config.IncrementSeconds)
	}

	if !u.Config.SoundEnabled {
		b.WriteString("  |  muted")
	}

	if u.Pending {
		b.WriteString("  |  new settings apply after reset")
	}

	return b.String()
}

func finishedText(s clock.State) string {
	switch {
	case s.Exhausted1() && s.Exhausted2():
		return "Time is up for both players"
	case s.Exhausted1():
		return "Time is up: player 1 flagged"
	default:
		return "Time is up: player 2 flagged"
	}
}
