// Package engine implements the chess clock state machine.
//
// Apply is the single transition function: it takes the current clock.State
// and one Event and returns the next state. Events that are not valid in the
// current phase leave the state untouched instead of failing, so a stray tick
// delivered after a pause or a reset can never move a clock.
//
// Engine wraps Apply for callers that prefer methods over event values.
package engine
