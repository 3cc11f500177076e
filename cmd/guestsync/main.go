// Package main is the entry point for the guestsync CLI.
//
// guestsync keeps a vacation-rental operation in sync: it pulls upcoming
// reservations from the booking platform, provisions temporary door codes
// on the property's smart lock, and mirrors stays into a calendar.
//
// Commands: sync, pins, events, validate, watch, version.
//
// For detailed usage information, run:
//
//	guestsync --help
package main

import (
	"fmt"
	"os"

	"github.com/jardilio/august-guesty-integration/cmd/guestsync/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
