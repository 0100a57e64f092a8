package session

import (
	"fmt"

	"github.com/oshokin/chessclock/internal/domain/clock"
	"github.com/oshokin/chessclock/internal/engine"
)

// Controller applies input events to an engine. It is not goroutine-safe;
// use Runner to share one between goroutines.
type Controller struct {
	// engine holds the clock state.
	engine *engine.Engine
	// config is the time control of the current session.
	config clock.Config
	// staged is a time control waiting for the next reset.
	staged *clock.Config
}

// NewController validates cfg and returns a controller with an idle session.
func NewController(cfg clock.Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return &Controller{
		engine: engine.New(cfg),
		config: cfg,
	}, nil
}

// RestoreController continues a saved session played with cfg.
func RestoreController(cfg clock.Config, state clock.State) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return &Controller{
		engine: engine.Restore(state),
		config: cfg,
	}, nil
}

// State returns the current clock state.
func (c *Controller) State() clock.State {
	return c.engine.State()
}

// Config returns the configuration of the current session.
func (c *Controller) Config() clock.Config {
	return c.config
}

// Staged returns the configuration waiting for the next reset, if any.
func (c *Controller) Staged() (clock.Config, bool) {
	if c.staged == nil {
		return clock.Config{}, false
	}

	return *c.staged, true
}

// Handle applies ev and reports the resulting update. Only SettingsChanged
// can fail, and a failed change leaves the session untouched.
//
//nolint:cyclop // Flat dispatch over the input events.
func (c *Controller) Handle(ev Event) (Update, error) {
	before := c.engine.State()

	var click bool

	switch ev := ev.(type) {
	case SelectSide:
		click = c.selectSide(before, ev.Side)
	case KeyPress:
		// A key always means "switch away from the active side".
		click = c.selectSide(before, before.ActiveSide.Other())
	case TogglePause:
		switch before.Phase {
		case clock.Running:
			c.engine.Pause()
		case clock.Paused:
			c.engine.Resume()
		case clock.Idle, clock.Finished:
		}
	case ResetRequest:
		if c.staged != nil {
			c.config = *c.staged
			c.staged = nil
		}

		c.engine.Reset(c.config)
	case SettingsChanged:
		if err := c.changeSettings(before, ev.Config); err != nil {
			return c.update(nil), err
		}
	case AdjustSettings:
		cfg, err := ev.Adjust(c.next())
		if err != nil {
			return c.update(nil), fmt.Errorf("adjust settings: %w", err)
		}

		if err := c.changeSettings(before, cfg); err != nil {
			return c.update(nil), err
		}
	case TickElapsed:
		c.engine.Tick(ev.Elapsed)
	case Query:
	}

	after := c.engine.State()

	var signals []Signal

	if c.config.SoundEnabled {
		if click {
			signals = append(signals, SignalClick)
		}

		if before.Phase != clock.Finished && after.Phase == clock.Finished {
			signals = append(signals, SignalAlarm)
		}
	}

	return c.update(signals), nil
}

// selectSide makes side the running clock and reports whether the press was accepted.
func (c *Controller) selectSide(before clock.State, side clock.Side) bool {
	switch before.Phase {
	case clock.Idle:
		c.engine.Start(side, 0)
	case clock.Running:
		if side == before.ActiveSide {
			return false
		}

		c.engine.SwitchTurn(c.config.Increment())
	case clock.Paused, clock.Finished:
		return false
	}

	return true
}

// changeSettings applies cfg now when no game is in progress and stages it otherwise.
// The sound switch always applies immediately since it does not touch the clocks.
func (c *Controller) changeSettings(before clock.State, cfg clock.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	switch before.Phase {
	case clock.Idle, clock.Finished:
		c.config = cfg
		c.staged = nil
		c.engine.Reset(cfg)
	case clock.Running, clock.Paused:
		c.config.SoundEnabled = cfg.SoundEnabled

		if sameTimeControl(c.config, cfg) {
			c.staged = nil
		} else {
			c.staged = &cfg
		}
	}

	return nil
}

// next returns the configuration the next reset will apply.
func (c *Controller) next() clock.Config {
	if c.staged == nil {
		return c.config
	}

	next := *c.staged
	next.SoundEnabled = c.config.SoundEnabled

	return next
}

func (c *Controller) update(signals []Signal) Update {
	return Update{
		State:   c.engine.State(),
		Config:  c.config,
		Pending: c.staged != nil,
		Signals: signals,
	}
}

func sameTimeControl(a, b clock.Config) bool {
	return a.InitialTime(clock.Player1) == b.InitialTime(clock.Player1) &&
		a.InitialTime(clock.Player2) == b.InitialTime(clock.Player2) &&
		a.IncrementSeconds == b.IncrementSeconds
}
