package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/chessclock/internal/settings"
)

// settingsCmd edits the settings file in an interactive form.
//
//nolint:gochecknoglobals // Cobra commands are package-level by convention.
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Edit the time control and sound settings.",
	Long: `Opens a form to edit the minutes per player, the increment and the sound switch.
A running clock picks the saved settings up; a game in progress keeps its time control
until the next reset.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		return settings.Edit(ctx, configPath)
	},
}
