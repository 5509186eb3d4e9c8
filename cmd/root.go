// Package cmd contains the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

// now is the clock used for output filenames, lifetimes and chart titles.
var now = time.Now

// Execute runs a root command and exits non-zero on failure.
// This is called by main.main(). It only needs to happen once per command.
func Execute(root *cobra.Command) {
	err := root.Execute()
	if err != nil {
		os.Exit(1)
	}
}
