package clock

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the time control agreed on before a game.
type Config struct {
	// MinutesPlayer1 is the starting time of player 1, and of both players
	// unless DifferentTimePerPlayer is set.
	MinutesPlayer1 int
	// MinutesPlayer2 is the starting time of player 2 when DifferentTimePerPlayer is set.
	MinutesPlayer2 int
	// IncrementSeconds is added to a player's clock after each completed turn.
	IncrementSeconds int
	// DifferentTimePerPlayer enables MinutesPlayer2.
	DifferentTimePerPlayer bool
	// SoundEnabled turns click and alarm signals on.
	SoundEnabled bool
}

const (
	// DefaultMinutes is the starting time used when nothing else is configured.
	DefaultMinutes = 10
	// DefaultIncrementSeconds is the increment used when nothing else is configured.
	DefaultIncrementSeconds = 5
	// MaxMinutes is the longest starting time accepted, one week.
	MaxMinutes = 7 * 24 * 60
	// MaxIncrementSeconds is the largest increment accepted, one hour.
	MaxIncrementSeconds = 60 * 60
)

var (
	// ErrInvalidMinutes is returned for a starting time outside 1..MaxMinutes.
	ErrInvalidMinutes = errors.New("minutes must be between 1 and 10080")
	// ErrInvalidIncrement is returned for an increment outside 0..MaxIncrementSeconds.
	ErrInvalidIncrement = errors.New("increment must be between 0 and 3600 seconds")
)

// DefaultConfig returns the time control the application starts with.
func DefaultConfig() Config {
	return Config{
		MinutesPlayer1:   DefaultMinutes,
		MinutesPlayer2:   DefaultMinutes,
		IncrementSeconds: DefaultIncrementSeconds,
		SoundEnabled:     true,
	}
}

// Validate rejects configurations the engine must never see.
func (c Config) Validate() error {
	if !validMinutes(c.MinutesPlayer1) {
		return fmt.Errorf("player 1: %w", ErrInvalidMinutes)
	}

	if c.DifferentTimePerPlayer && !validMinutes(c.MinutesPlayer2) {
		return fmt.Errorf("player 2: %w", ErrInvalidMinutes)
	}

	if c.IncrementSeconds < 0 || c.IncrementSeconds > MaxIncrementSeconds {
		return ErrInvalidIncrement
	}

	return nil
}

// InitialTime returns the starting time of the given side.
func (c Config) InitialTime(side Side) time.Duration {
	minutes := c.MinutesPlayer1
	if side == Player2 && c.DifferentTimePerPlayer {
		minutes = c.MinutesPlayer2
	}

	return time.Duration(minutes) * time.Minute
}

// Increment returns the per-turn increment.
func (c Config) Increment() time.Duration {
	return time.Duration(c.IncrementSeconds) * time.Second
}

func validMinutes(m int) bool {
	return m >= 1 && m <= MaxMinutes
}
