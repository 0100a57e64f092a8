// Package clock contains core domain types for the chess clock.
//
// It defines Config (what the players agreed on before the game), State (the
// two countdowns at a point in time), the Side and Phase enums, and the
// display formatting shared by every view of the clock.
package clock
