package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/chessclock/internal/config"
	"github.com/oshokin/chessclock/internal/domain/clock"
	"github.com/oshokin/chessclock/internal/remote"
	"github.com/oshokin/chessclock/internal/session"
)

//nolint:gochecknoglobals // Cobra commands and flags are package-level by convention.
var (
	// remoteAddress overrides the address taken from the settings file.
	remoteAddress string
	// remoteTimeout bounds each remote call.
	remoteTimeout time.Duration

	// configure flags.
	configureMinutes1  int
	configureMinutes2  int
	configureIncrement int
	configureDifferent bool
	configureSound     bool

	// remoteCmd groups the remote-control commands.
	remoteCmd = &cobra.Command{
		Use:   "remote",
		Short: "Control a running chess clock over the network.",
		Long: `Sends commands to a chess clock started with a listen address.
The address defaults to listen_address from the settings file.`,
	}

	remoteStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show both clocks.",
		Args:  cobra.NoArgs,
		RunE: remoteCall(func(ctx context.Context, c *remote.Client, _ []string) (session.Update, error) {
			return c.Status(ctx)
		}),
	}

	remoteSelectCmd = &cobra.Command{
		Use:   "select player1|player2",
		Short: "Start the given player's clock.",
		Args:  cobra.ExactArgs(1),
		RunE: remoteCall(func(ctx context.Context, c *remote.Client, args []string) (session.Update, error) {
			side, err := clock.ParseSide(args[0])
			if err != nil {
				return session.Update{}, err
			}

			return c.Select(ctx, side)
		}),
	}

	remoteSwitchCmd = &cobra.Command{
		Use:   "switch",
		Short: "End the active player's turn.",
		Args:  cobra.NoArgs,
		RunE: remoteCall(func(ctx context.Context, c *remote.Client, _ []string) (session.Update, error) {
			return c.Switch(ctx)
		}),
	}

	remotePauseCmd = &cobra.Command{
		Use:   "pause",
		Short: "Pause or resume the clock.",
		Args:  cobra.NoArgs,
		RunE: remoteCall(func(ctx context.Context, c *remote.Client, _ []string) (session.Update, error) {
			return c.TogglePause(ctx)
		}),
	}

	remoteResetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Start a new game.",
		Args:  cobra.NoArgs,
		RunE: remoteCall(func(ctx context.Context, c *remote.Client, _ []string) (session.Update, error) {
			return c.Reset(ctx)
		}),
	}

	remoteConfigureCmd = &cobra.Command{
		Use:   "configure",
		Short: "Change the time control of the running clock.",
		Long: `Changes the time control of the running clock without touching the settings file.
Only the flags given are changed. A game in progress keeps its time control until the next reset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			change := configChange(cmd)

			return remoteCall(func(ctx context.Context, c *remote.Client, _ []string) (session.Update, error) {
				return c.Configure(ctx, change)
			})(cmd, args)
		},
	}

	remoteWatchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Follow the clock until it exits or Ctrl+C.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			client, err := dialRemote(ctx)
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			var last string

			return client.Watch(ctx, func(u session.Update) error {
				line := remote.FormatUpdate(u)
				if line == last {
					return nil
				}

				last = line
				_, err := fmt.Fprintln(cmd.OutOrStdout(), line)

				return err
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	remoteCmd.PersistentFlags().StringVarP(&remoteAddress, "address", "a", "", "address of the chess clock")
	remoteCmd.PersistentFlags().
		DurationVarP(&remoteTimeout, "timeout", "t", remote.DefaultCallTimeout, "timeout of each call")

	remoteConfigureCmd.Flags().IntVar(&configureMinutes1, "minutes", 0, "minutes for player 1 (and 2 unless set separately)")
	remoteConfigureCmd.Flags().IntVar(&configureMinutes2, "minutes2", 0, "minutes for player 2")
	remoteConfigureCmd.Flags().IntVar(&configureIncrement, "increment", 0, "seconds added after each move")
	remoteConfigureCmd.Flags().BoolVar(&configureDifferent, "different", false, "use --minutes2 for player 2")
	remoteConfigureCmd.Flags().BoolVar(&configureSound, "sound", true, "play click and alarm sounds")

	remoteCmd.AddCommand(
		remoteStatusCmd,
		remoteSelectCmd,
		remoteSwitchCmd,
		remotePauseCmd,
		remoteResetCmd,
		remoteConfigureCmd,
		remoteWatchCmd,
	)
}

// remoteCall builds a RunE that performs one call and prints the result.
func remoteCall(
	call func(ctx context.Context, c *remote.Client, args []string) (session.Update, error),
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		client, err := dialRemote(ctx)
		if err != nil {
			return err
		}

		defer func() { _ = client.Close() }()

		update, err := call(ctx, client, args)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), remote.FormatUpdate(update))

		return err
	}
}

// dialRemote connects to the address from the flag or the settings file.
func dialRemote(ctx context.Context) (*remote.Client, error) {
	address := remoteAddress
	if address == "" {
		settings, err := config.LoadOrDefault(configPath)
		if err != nil {
			return nil, err
		}

		address = settings.ListenAddress
	}

	target, err := remote.DialAddress(address)
	if err != nil {
		return nil, err
	}

	return remote.Dial(ctx, target, remote.WithCallTimeout(remoteTimeout))
}

// configChange collects the configure flags the user actually set.
func configChange(cmd *cobra.Command) remote.ConfigChange {
	var change remote.ConfigChange

	flags := cmd.Flags()

	if flags.Changed("minutes") {
		change.MinutesPlayer1 = &configureMinutes1
	}

	if flags.Changed("minutes2") {
		change.MinutesPlayer2 = &configureMinutes2
	}

	if flags.Changed("increment") {
		change.IncrementSeconds = &configureIncrement
	}

	if flags.Changed("different") {
		change.DifferentTimePerPlayer = &configureDifferent
	}

	if flags.Changed("sound") {
		change.SoundEnabled = &configureSound
	}

	return change
}
