package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/chessclock/internal/domain/clock"
	"github.com/oshokin/chessclock/internal/logger"
)

// Config holds the time control and the runtime settings of the chess clock.
type Config struct {
	// MinutesPlayer1 is the starting time of player 1 (and of both players
	// unless DifferentTimePerPlayer is set).
	MinutesPlayer1 int `yaml:"minutes_player1"`
	// MinutesPlayer2 is used only when DifferentTimePerPlayer is set.
	MinutesPlayer2 int `yaml:"minutes_player2"`
	// IncrementSeconds is added to a clock after each completed turn.
	IncrementSeconds int `yaml:"increment_seconds"`
	// DifferentTimePerPlayer enables MinutesPlayer2.
	DifferentTimePerPlayer bool `yaml:"different_time_per_player"`
	// SoundEnabled turns the click and alarm sounds on.
	SoundEnabled bool `yaml:"sound_enabled"`
	// TickInterval is how often a running clock is refreshed.
	TickInterval time.Duration `yaml:"tick_interval"`
	// SwitchKeys lists the keys that end the active player's turn.
	SwitchKeys string `yaml:"switch_keys"`
	// ListenAddress enables the gRPC remote control when not empty.
	ListenAddress string `yaml:"listen_address"`
	// SnapshotFile is where an interrupted session is saved.
	SnapshotFile string `yaml:"snapshot_file"`
	// LogLevel is the minimum level written to the log.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the default filename for clock settings.
	DefaultConfigFilename = "chessclock.yaml"

	// DefaultSnapshotFilename is the default filename for a saved session.
	DefaultSnapshotFilename = "chessclock-snapshot.json"

	// DefaultLogFilename is where interactive sessions write their log.
	DefaultLogFilename = "chessclock.log"

	// DefaultTickInterval is the default refresh period of a running clock.
	DefaultTickInterval = 100 * time.Millisecond

	// DefaultSwitchKeys are Space and every letter except O.
	DefaultSwitchKeys = " abcdefghijklmnpqrstuvwxyz"

	// DefaultLogLevel is the default minimum log level.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// minTickInterval and maxTickInterval bound the refresh period.
	minTickInterval = 10 * time.Millisecond
	maxTickInterval = time.Second
)

var (
	// ErrNotFound is returned by Load when the settings file does not exist.
	ErrNotFound = errors.New("settings file not found")
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errInvalidTickInterval is returned for a refresh period outside the supported range.
	errInvalidTickInterval = errors.New("tick interval must be between 10ms and 1s")
	// errUnknownLogLevel is returned for an unrecognised log level.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Default returns the settings used when no file exists yet.
func Default() *Config {
	defaults := clock.DefaultConfig()

	return &Config{
		MinutesPlayer1:         defaults.MinutesPlayer1,
		MinutesPlayer2:         defaults.MinutesPlayer2,
		IncrementSeconds:       defaults.IncrementSeconds,
		DifferentTimePerPlayer: defaults.DifferentTimePerPlayer,
		SoundEnabled:           defaults.SoundEnabled,
		TickInterval:           DefaultTickInterval,
		SwitchKeys:             DefaultSwitchKeys,
		SnapshotFile:           DefaultSnapshotFilename,
		LogLevel:               DefaultLogLevel,
	}
}

// Load reads configuration from the provided path and validates it.
// Fields missing from the file keep their default values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, ErrNotFound) {
		return Default(), nil
	}

	return cfg, err
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the settings and fills in defaults for optional fields.
// Invalid time controls are rejected here so the engine never sees them.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if err := settings.Clock().Validate(); err != nil {
		return fmt.Errorf("invalid time control: %w", err)
	}

	// Set default tick interval if not specified.
	if settings.TickInterval <= 0 {
		settings.TickInterval = DefaultTickInterval
	}

	if settings.TickInterval < minTickInterval || settings.TickInterval > maxTickInterval {
		return fmt.Errorf("%s: %w", settings.TickInterval, errInvalidTickInterval)
	}

	if settings.SwitchKeys == "" {
		settings.SwitchKeys = DefaultSwitchKeys
	}

	if settings.SnapshotFile == "" {
		settings.SnapshotFile = DefaultSnapshotFilename
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("%q: %w", settings.LogLevel, errUnknownLogLevel)
	}

	if settings.ListenAddress == "" {
		return nil
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen address: %w", err)
	}

	return nil
}

// Clock returns the time control part of the settings.
func (c *Config) Clock() clock.Config {
	return clock.Config{
		MinutesPlayer1:         c.MinutesPlayer1,
		MinutesPlayer2:         c.MinutesPlayer2,
		IncrementSeconds:       c.IncrementSeconds,
		DifferentTimePerPlayer: c.DifferentTimePerPlayer,
		SoundEnabled:           c.SoundEnabled,
	}
}

// SetClock copies a time control into the settings.
func (c *Config) SetClock(cc clock.Config) {
	c.MinutesPlayer1 = cc.MinutesPlayer1
	c.MinutesPlayer2 = cc.MinutesPlayer2
	c.IncrementSeconds = cc.IncrementSeconds
	c.DifferentTimePerPlayer = cc.DifferentTimePerPlayer
	c.SoundEnabled = cc.SoundEnabled
}
