package tui

import (
	"context"
	"errors"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/jonboulle/clockwork"

	"github.com/oshokin/chessclock/internal/domain/clock"
	"github.com/oshokin/chessclock/internal/logger"
	"github.com/oshokin/chessclock/internal/session"
)

// blinkInterval is the half period of the finished display.
const blinkInterval = 500 * time.Millisecond

// Sender delivers input events to the session.
type Sender interface {
	Send(ctx context.Context, ev session.Event) (session.Update, error)
}

// View owns an initialised tcell screen for the duration of Run.
type View struct {
	// screen is the terminal. The caller initialises and finalises it.
	screen tcell.Screen
	// keymap maps keys to actions.
	keymap Keymap
	// clock drives blinking.
	clock clockwork.Clock

	// last is the most recent update drawn.
	last session.Update
	// haveLast is set once the first update arrived.
	haveLast bool
	// blink is the current phase of the finished display.
	blink bool
	// buttons is the mouse button state seen last, to act on presses only.
	buttons tcell.ButtonMask
}

// NewView returns a view drawing on screen.
func NewView(screen tcell.Screen, keymap Keymap) *View {
	return &View{
		screen: screen,
		keymap: keymap,
		clock:  clockwork.NewRealClock(),
	}
}

// Run draws every update and forwards input to sender until the user quits,
// ctx is cancelled or updates is closed.
func (v *View) Run(ctx context.Context, sender Sender, updates <-chan session.Update) error {
	ctx = logger.WithName(ctx, "tui")

	events := make(chan tcell.Event)
	stop := make(chan struct{})

	defer close(stop)

	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}

			select {
			case events <- ev:
			case <-stop:
				return
			}
		}
	}()

	blinker := v.clock.NewTicker(blinkInterval)
	defer blinker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}

			v.last, v.haveLast = u, true
			v.draw()
		case <-blinker.Chan():
			if v.haveLast && v.last.State.Phase == clock.Finished {
				v.blink = !v.blink
				v.draw()
			}
		case ev := <-events:
			input, quit := v.translate(ev)
			if quit {
				logger.Info(ctx, "Quit requested")

				return nil
			}

			if input == nil {
				continue
			}

			if _, err := sender.Send(ctx, input); err != nil {
				if errors.Is(err, session.ErrStopped) || ctx.Err() != nil {
					return nil
				}

				logger.WarnKV(ctx, "Input rejected", "error", err)
			}
		}
	}
}

// draw renders the last update.
func (v *View) draw() {
	if !v.haveLast {
		return
	}

	if v.last.State.Phase != clock.Finished {
		v.blink = false
	}

	Render(v.screen, v.last, v.blink)
}

// translate maps a terminal event to a session event. quit is set when the
// user asked to leave.
func (v *View) translate(ev tcell.Event) (session.Event, bool) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch v.keymap.Action(ev) {
		case ActionQuit:
			return nil, true
		case ActionSwitch:
			return session.KeyPress{}, false
		case ActionTogglePause:
			return session.TogglePause{}, false
		case ActionReset:
			return session.ResetRequest{}, false
		case ActionNone:
		}
	case *tcell.EventMouse:
		buttons := ev.Buttons()
		pressed := buttons&tcell.Button1 != 0 && v.buttons&tcell.Button1 == 0
		v.buttons = buttons

		if !pressed {
			return nil, false
		}

		width, height := v.screen.Size()
		x, y := ev.Position()

		// Clicking your own half ends your turn.
		if side, ok := sideAt(width, height, x, y); ok {
			return session.SelectSide{Side: side.Other()}, false
		}
	case *tcell.EventResize:
		v.screen.Sync()
		v.draw()
	}

	return nil, false
}
