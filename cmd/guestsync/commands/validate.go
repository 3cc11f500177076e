package commands

import (
	"github.com/spf13/cobra"

	"github.com/jardilio/august-guesty-integration/cmd/guestsync/handlers"
)

// Validate returns the command for the one-time lock vendor MFA flow.
//
// The vendor requires each API installation to be validated once before
// sessions succeed. Run without --code to have a validation code sent to
// the configured identifier, then run again with --code to complete it.
func Validate() *cobra.Command {
	var configPath string
	var code string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the lock vendor API installation",
		Long: `Validate this installation with the lock vendor.

A fresh install ID must complete a one-time multi-factor validation before
it can open sessions.

Examples:
  # Request a validation code (sent to the configured identifier)
  guestsync validate

  # Complete validation with the received code
  guestsync validate --code 123456`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Validate(cmd.Context(), configPath, code)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "guestsync.yaml", "Path to configuration file")
	cmd.Flags().StringVar(&code, "code", "", "Validation code received at the configured identifier")

	return cmd
}
