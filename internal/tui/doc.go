// Package tui is the terminal front end of the chess clock.
//
// It renders both countdowns side by side with a control row underneath and
// turns keys and mouse clicks into session events. It never changes clock
// state itself.
package tui
