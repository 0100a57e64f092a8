package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/oshokin/chessclock/internal/config"
	"github.com/oshokin/chessclock/internal/domain/clock"
	"github.com/oshokin/chessclock/internal/logger"
)

var (
	// errNotPositive is returned for minutes outside 1..clock.MaxMinutes.
	errNotPositive = errors.New("enter a whole number from 1 to 10080")
	// errNegative is returned for an increment outside 0..clock.MaxIncrementSeconds.
	errNegative = errors.New("enter a whole number from 0 to 3600")
)

// values holds the form fields as the widgets edit them.
type values struct {
	minutes1  string
	minutes2  string
	increment string
	different bool
	sound     bool
	confirmed bool
}

// valuesFrom fills the form fields from cfg.
func valuesFrom(cfg *config.Config) values {
	return values{
		minutes1:  strconv.Itoa(cfg.MinutesPlayer1),
		minutes2:  strconv.Itoa(cfg.MinutesPlayer2),
		increment: strconv.Itoa(cfg.IncrementSeconds),
		different: cfg.DifferentTimePerPlayer,
		sound:     cfg.SoundEnabled,
	}
}

// apply copies the edited fields into cfg.
func (v values) apply(cfg *config.Config) error {
	minutes1, err := parsePositive(v.minutes1)
	if err != nil {
		return fmt.Errorf("minutes for player 1: %w", err)
	}

	increment, err := parseNonNegative(v.increment)
	if err != nil {
		return fmt.Errorf("increment: %w", err)
	}

	cfg.MinutesPlayer1 = minutes1
	cfg.IncrementSeconds = increment
	cfg.DifferentTimePerPlayer = v.different
	cfg.SoundEnabled = v.sound

	if !v.different {
		return nil
	}

	minutes2, err := parsePositive(v.minutes2)
	if err != nil {
		return fmt.Errorf("minutes for player 2: %w", err)
	}

	cfg.MinutesPlayer2 = minutes2

	return nil
}

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > clock.MaxMinutes {
		return 0, errNotPositive
	}

	return n, nil
}

func parseNonNegative(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > clock.MaxIncrementSeconds {
		return 0, errNegative
	}

	return n, nil
}

func validatePositive(s string) error {
	_, err := parsePositive(s)

	return err
}

func validateNonNegative(s string) error {
	_, err := parseNonNegative(s)

	return err
}

// newForm builds the settings form over v.
func newForm(v *values) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Minutes").
				Description("Starting time of player 1 (of both players unless set separately)").
				Validate(validatePositive).
				Value(&v.minutes1),

			huh.NewConfirm().
				Title("Different time for player 2?").
				Value(&v.different),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Minutes for player 2").
				Validate(validatePositive).
				Value(&v.minutes2),
		).WithHideFunc(func() bool { return !v.different }),
		huh.NewGroup(
			huh.NewInput().
				Title("Increment").
				Description("Seconds added to a clock after each move").
				Validate(validateNonNegative).
				Value(&v.increment),

			huh.NewConfirm().
				Title("Sound").
				Affirmative("On").
				Negative("Off").
				Value(&v.sound),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save these settings?").
				Value(&v.confirmed),
		),
	)
}

// Edit shows the settings form for the file at path and saves the result.
// Settings the form does not show are kept as they are.
func Edit(ctx context.Context, path string) error {
	ctx = logger.WithName(ctx, "settings")

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	v := valuesFrom(cfg)

	if err := newForm(&v).RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			logger.Info(ctx, "Settings unchanged")

			return nil
		}

		return fmt.Errorf("settings form: %w", err)
	}

	if !v.confirmed {
		logger.Info(ctx, "Settings unchanged")

		return nil
	}

	return save(ctx, path, cfg, v)
}

// save applies v to cfg and writes it to path.
func save(ctx context.Context, path string, cfg *config.Config, v values) error {
	if err := v.apply(cfg); err != nil {
		return err
	}

	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	logger.InfoKV(ctx, "Settings saved",
		"path", path,
		"minutes_player1", cfg.MinutesPlayer1,
		"minutes_player2", cfg.MinutesPlayer2,
		"increment_seconds", cfg.IncrementSeconds,
		"sound_enabled", cfg.SoundEnabled,
	)

	return nil
}
