package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/chessclock/internal/config"
	"github.com/oshokin/chessclock/internal/logger"
	"github.com/oshokin/chessclock/internal/service/play"
	"github.com/oshokin/chessclock/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logFile receives the log while the clock is on screen.
	logFile string
	// listenAddress enables the remote control on this address.
	listenAddress string
	// snapshotFile is where an unfinished game is saved.
	snapshotFile string
	// resume continues the saved game.
	resume bool
	// noAudio skips opening the audio device.
	noAudio bool
	// logLevel overrides the log level for every command.
	logLevel string

	// rootCmd represents the base command: a chess clock in the terminal.
	rootCmd = &cobra.Command{
		Use:   "chessclock",
		Short: "Two-player chess clock for the terminal.",
		Long: `Runs a two-player chess clock in the terminal.

Press space or any letter except O to end your turn, or click your half of the screen.
Enter pauses and resumes, Ctrl+R starts a new game, Esc quits.
Time control and sound come from the settings file; edit it with "chessclock settings",
changes are picked up while the clock runs and apply from the next game.
Quitting in the middle of a game saves it; continue with --resume.
With a listen address the clock can be driven by "chessclock remote".`,
		Args: cobra.NoArgs,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if logLevel == "" {
				return nil
			}

			lvl, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("unknown log level %q", logLevel)
			}

			logger.SetLevel(lvl)

			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &play.Options{
				ConfigPath:    configPath,
				LogFile:       logFile,
				ListenAddress: listenAddress,
				SnapshotFile:  snapshotFile,
				Resume:        resume,
				NoAudio:       noAudio,
				LogLevel:      logLevel,
			}

			return play.Run(ctx, options)
		},
	}
)

// Execute runs the chessclock CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.Flags().StringVar(&logFile, "log-file", config.DefaultLogFilename, "file receiving the log")
	rootCmd.Flags().
		StringVarP(&listenAddress, "listen", "l", "", "enable the remote control on this address (e.g. :50051)")
	rootCmd.Flags().StringVar(&snapshotFile, "snapshot-file", "", "where an unfinished game is saved")
	rootCmd.Flags().BoolVarP(&resume, "resume", "r", false, "continue the saved game")
	rootCmd.Flags().BoolVar(&noAudio, "no-audio", false, "do not open the audio device")

	rootCmd.AddCommand(settingsCmd, remoteCmd)
}
