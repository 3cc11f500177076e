package commands

import (
	"github.com/spf13/cobra"

	"github.com/jardilio/august-guesty-integration/cmd/guestsync/handlers"
)

// Events returns the command that reconciles the calendar only.
func Events() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Reconcile calendar events against reservations",
		Long: `Reconcile the calendar without touching the lock.

Diffs upcoming reservations against the calendar's current events and
creates, updates, or deletes events so the calendar matches the
reservation set. Unchanged events are left alone.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Events(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "guestsync.yaml", "Path to configuration file")

	return cmd
}
