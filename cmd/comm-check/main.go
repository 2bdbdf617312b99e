// Package main is the entry point for the comm-check CLI.
//
// The comm check probes field devices (cameras, detectors, message signs,
// cabinet battery backups) for network reachability and publishes the
// results.
//
// Usage:
//
//	comm-check check camera -c config.yaml       # Run a batch pass + upload to S3
//	comm-check publish camera -c config.yaml     # Publish S3 batches to the data portal
//	comm-check validate -c config.yaml           # Validate configuration
//	comm-check version                           # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "comm-check",
	Short: "Network reachability checks for field devices",
	Long: `comm-check pings the IP addresses of networked field devices and
publishes the resulting comm status records.

A batch pass fetches the device inventory, probes every device with a
bounded worker pool (retrying timeouts), validates the results against the
published schema, and uploads the batch to S3. A separate publish pass
forwards stored batches to the open data portal.`,
	// No Run/RunE means this just shows help when called without subcommands
}

// versionCmd prints build version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("comm-check %s (commit %s, built %s)\n", version, commit, date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}
