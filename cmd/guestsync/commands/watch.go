package commands

import (
	"github.com/spf13/cobra"

	"github.com/jardilio/august-guesty-integration/cmd/guestsync/handlers"
)

// Watch returns the command that runs sync continuously.
func Watch() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run sync continuously on an interval",
		Long: `Run full sync passes on an interval until interrupted.

Serves Prometheus metrics on the configured metrics address while running.
A failing pass is logged and counted; the loop keeps going.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Watch(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "guestsync.yaml", "Path to configuration file")

	return cmd
}
