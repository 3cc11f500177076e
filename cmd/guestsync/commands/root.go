// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing and flag binding. Command execution is delegated to handler
// functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the guestsync CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guestsync",
		Short: "Sync reservations to door codes and calendar events",
	}

	cmd.AddCommand(Sync())
	cmd.AddCommand(Pins())
	cmd.AddCommand(Events())
	cmd.AddCommand(Watch())

	// Setup/utility commands
	cmd.AddCommand(Validate())
	cmd.AddCommand(Version())

	return cmd
}
