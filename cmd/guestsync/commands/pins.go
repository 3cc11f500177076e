package commands

import (
	"github.com/spf13/cobra"

	"github.com/jardilio/august-guesty-integration/cmd/guestsync/handlers"
)

// Pins returns the command that provisions door codes only.
func Pins() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "pins",
		Short: "Provision door codes for confirmed reservations",
		Long: `Provision door codes without touching the calendar.

For every confirmed upcoming reservation that has no code on the lock yet,
creates a guest user with the lock vendor, submits a load command, and
waits until the code reports loaded.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Pins(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "guestsync.yaml", "Path to configuration file")

	return cmd
}
