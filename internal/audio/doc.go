// Package audio plays the click and alarm sounds of the chess clock.
//
// The Player is a session listener: it reacts to the click and alarm signals
// carried by session updates. Tones are synthesised, so no sound files ship
// with the binary.
package audio
