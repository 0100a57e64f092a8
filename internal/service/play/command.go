package play

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/oshokin/chessclock/internal/audio"
	"github.com/oshokin/chessclock/internal/config"
	"github.com/oshokin/chessclock/internal/logger"
	"github.com/oshokin/chessclock/internal/session"
	"github.com/oshokin/chessclock/internal/tui"
)

// Options controls an interactive session.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// LogFile receives the log while the terminal shows the clock.
	LogFile string
	// ListenAddress overrides the remote-control address from the settings.
	ListenAddress string
	// SnapshotFile overrides the snapshot path from the settings.
	SnapshotFile string
	// Resume continues the session saved in the snapshot file.
	Resume bool
	// NoAudio skips opening the audio device.
	NoAudio bool
	// LogLevel overrides the log level from the settings.
	LogLevel string
	// Screen replaces the real terminal, mainly for tests.
	Screen tcell.Screen
}

// Run plays a session until the user quits or ctx is cancelled.
//
//nolint:funlen // Linear wiring of the session collaborators.
func Run(ctx context.Context, opts *Options) error {
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DefaultConfigFilename
	}

	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	closeLog, err := redirectLog(opts.LogFile, settings.LogLevel)
	if err != nil {
		return err
	}

	defer closeLog()

	ctx = logger.WithName(logger.ToContext(ctx, logger.Logger()), "play")

	repo := newSnapshotRepository(settings.SnapshotFile)

	ctrl, err := newController(ctx, settings, repo, opts.Resume)
	if err != nil {
		return err
	}

	player := audio.Silent()
	if !opts.NoAudio {
		player = audio.New(ctx)
	}

	defer player.Close()

	runner := session.NewRunner(ctrl,
		session.WithTickInterval(settings.TickInterval),
		session.WithListener(player),
	)

	var listener net.Listener
	if settings.ListenAddress != "" {
		if listener, err = listen(ctx, settings.ListenAddress); err != nil {
			return err
		}

		// Serve closes it too; this covers the paths that never get there.
		defer func() { _ = listener.Close() }()
	}

	screen, err := openScreen(opts.Screen)
	if err != nil {
		return err
	}

	defer screen.Fini()

	view := tui.NewView(screen, tui.NewKeymap(settings.SwitchKeys))

	updates, unsubscribe := runner.Subscribe()
	defer unsubscribe()

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, groupCtx := errgroup.WithContext(sessionCtx)

	group.Go(func() error {
		return runner.Run(groupCtx)
	})

	watcher := watchSettings(groupCtx, opts.ConfigPath, settings, runner)
	if watcher != nil {
		defer func() { _ = watcher.Close() }()
	}

	if listener != nil {
		group.Go(func() error {
			return serveRemote(groupCtx, listener, runner)
		})
	}

	group.Go(func() error {
		// Leaving the view ends the session.
		defer cancel()

		return view.Run(groupCtx, runner, updates)
	})

	logger.InfoKV(ctx, "Session started",
		"config_path", opts.ConfigPath,
		"listen_address", settings.ListenAddress,
		"resume", opts.Resume,
		"log_level", settings.LogLevel,
	)

	runErr := group.Wait()

	// The runner has stopped, so the controller is ours again.
	if err := finishSession(ctx, repo, ctrl); err != nil {
		logger.ErrorKV(ctx, "Failed to save session", "error", err)
	}

	logger.Info(ctx, "Session ended")

	return runErr
}

// loadSettings reads the settings file and applies command-line overrides.
func loadSettings(opts *Options) (*config.Config, error) {
	settings, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if opts.ListenAddress != "" {
		settings.ListenAddress = opts.ListenAddress
	}

	if opts.SnapshotFile != "" {
		settings.SnapshotFile = opts.SnapshotFile
	}

	if opts.LogLevel != "" {
		settings.LogLevel = opts.LogLevel
	}

	if err := config.Validate(settings); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return settings, nil
}

// redirectLog sends the global log to path at the given level and returns
// a function restoring the previous logger.
func redirectLog(path, level string) (func(), error) {
	if path == "" {
		path = config.DefaultLogFilename
	}

	var options []zap.Option
	if lvl, ok := logger.ParseLogLevel(level); ok {
		options = append(options, logger.WithLevel(lvl))
	}

	fileLogger, closeFile, err := logger.NewFile(path, logger.AtomicLevel(), options...)
	if err != nil {
		return nil, err
	}

	previous := logger.Logger()
	logger.SetLogger(fileLogger)

	return func() {
		logger.SetLogger(previous)
		_ = closeFile()
	}, nil
}

// openScreen initialises screen, or the real terminal when screen is nil.
func openScreen(screen tcell.Screen) (tcell.Screen, error) {
	if screen == nil {
		var err error

		screen, err = tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("open terminal: %w", err)
		}
	}

	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initialise terminal: %w", err)
	}

	screen.EnableMouse()
	screen.HideCursor()

	return screen, nil
}

// watchSettings forwards settings file changes to the session. A missing
// watcher only costs live reloading, so failures are logged.
func watchSettings(
	ctx context.Context,
	path string,
	settings *config.Config,
	runner *session.Runner,
) *config.Watcher {
	watcher, err := config.NewWatcher(ctx, path, settings, func(cfg *config.Config) {
		_, err := runner.Send(ctx, session.SettingsChanged{Config: cfg.Clock()})
		if err != nil && !errors.Is(err, session.ErrStopped) && ctx.Err() == nil {
			logger.WarnKV(ctx, "Settings change rejected", "error", err)
		}
	})
	if err != nil {
		logger.WarnKV(ctx, "Settings will not be reloaded", "path", path, "error", err)

		return nil
	}

	return watcher
}
