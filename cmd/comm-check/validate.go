package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atd-dts/commcheck/config"
)

// validateCmd validates a config file without running a batch.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a comm-check configuration file without running a batch.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  comm-check validate -c config.yaml
  comm-check validate --config /etc/comm-check/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Workers:      %d\n", cfg.Workers)
	fmt.Printf("  Max attempts: %d\n", *cfg.MaxAttempts)
	fmt.Printf("  Timeout:      %s\n", cfg.Timeout.Duration())
	fmt.Printf("  Device types: %s\n", strings.Join(cfg.SupportedDeviceTypes(), ", "))

	return nil
}
