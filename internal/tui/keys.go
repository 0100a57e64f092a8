package tui

import (
	"strings"
	"unicode"

	"github.com/gdamore/tcell/v2"
)

// Action is what a key asks the clock to do.
type Action int

const (
	// ActionNone means the key is not bound.
	ActionNone Action = iota
	// ActionSwitch ends the active player's turn.
	ActionSwitch
	// ActionTogglePause pauses or resumes.
	ActionTogglePause
	// ActionReset starts a new session.
	ActionReset
	// ActionQuit leaves the program.
	ActionQuit
)

// Keymap maps keyboard events to actions.
type Keymap struct {
	// switchKeys holds the lower-cased runes that end a turn.
	switchKeys map[rune]struct{}
}

// NewKeymap returns a keymap in which every rune of switchKeys ends a turn.
// Letters match in either case.
func NewKeymap(switchKeys string) Keymap {
	keys := make(map[rune]struct{}, len(switchKeys))
	for _, r := range strings.ToLower(switchKeys) {
		keys[r] = struct{}{}
	}

	return Keymap{switchKeys: keys}
}

// Action returns the action bound to ev.
func (k Keymap) Action(ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit
	case tcell.KeyEnter:
		return ActionTogglePause
	case tcell.KeyCtrlR:
		return ActionReset
	case tcell.KeyRune:
	default:
		return ActionNone
	}

	if ev.Modifiers()&(tcell.ModCtrl|tcell.ModAlt|tcell.ModMeta) != 0 {
		if unicode.ToLower(ev.Rune()) == 'r' && ev.Modifiers()&tcell.ModCtrl != 0 {
			return ActionReset
		}

		return ActionNone
	}

	if _, ok := k.switchKeys[unicode.ToLower(ev.Rune())]; ok {
		return ActionSwitch
	}

	return ActionNone
}
