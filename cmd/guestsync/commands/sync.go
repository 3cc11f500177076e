package commands

import (
	"github.com/spf13/cobra"

	"github.com/jardilio/august-guesty-integration/cmd/guestsync/handlers"
)

// Sync returns the command for a full one-shot sync run.
//
// A run fetches upcoming reservations, provisions door codes for confirmed
// stays that do not have one yet, and reconciles the calendar when calendar
// sync is enabled.
//
// Optional flags:
//
//	--config, -c: Path to configuration YAML file (default: guestsync.yaml)
//
// Credentials are read from the environment (or a .env file); see the
// README for the full variable list.
func Sync() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one full sync: door codes and calendar",
		Long: `Run one full sync pass.

Fetches upcoming reservations from the booking platform, loads a door code
onto the lock for every confirmed stay that does not have one, and brings
the calendar in line with the reservation set.

Examples:
  # Sync using guestsync.yaml in the current directory
  guestsync sync

  # Sync using a specific config file
  guestsync sync -c production.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Sync(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "guestsync.yaml", "Path to configuration file")

	return cmd
}
