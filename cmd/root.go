// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "statscard",
	Short: "An HTTP service that renders GitHub stats as SVG cards.",
	Long: `statscard is an HTTP service that fetches repository metadata and user
contribution statistics from the GitHub GraphQL API and serves them as
JSON payloads or rendered SVG cards. Failed lookups are rendered as an
error card instead of a non-200 response.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
