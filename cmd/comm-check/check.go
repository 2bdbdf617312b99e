package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/atd-dts/commcheck"
	"github.com/atd-dts/commcheck/config"
	"github.com/atd-dts/commcheck/internal/blob"
	"github.com/atd-dts/commcheck/internal/inventory"
	"github.com/atd-dts/commcheck/internal/report"
)

// newLogger creates a JSON logger for CLI use.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// checkCmd runs one full comm-check batch pass for a device type.
var checkCmd = &cobra.Command{
	Use:   "check <device_type>",
	Short: "Ping a device type's inventory and upload the results",
	Long: `Run one comm-check batch pass for a device type.

The pass will:
  - Fetch the device inventory from PostgREST
  - Probe every device with the configured worker pool, retrying timeouts
  - Validate every result record against the published schema
  - Log a status summary and upload the batch JSON to S3

Malformed inventory records are dropped and counted; they never fail the run.

Example:
  comm-check check camera -c config.yaml
  comm-check check detector -c config.yaml -e prod -w 100`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	checkCmd.Flags().StringP("env", "e", "dev", "environment (dev or prod)")
	checkCmd.Flags().IntP("workers", "w", 0, "override the configured worker count")
	checkCmd.Flags().BoolP("verbose", "v", false, "set logger to DEBUG level")
	_ = checkCmd.MarkFlagRequired("config")
}

func runCheck(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(verbose)

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	env, _ := cmd.Flags().GetString("env")
	if env != "dev" && env != "prod" {
		return fmt.Errorf("env must be dev or prod, got %q", env)
	}

	deviceType := args[0]
	dt, ok := cfg.DeviceType(deviceType)
	if !ok {
		return fmt.Errorf("unknown device type %q (supported: %v)", deviceType, cfg.SupportedDeviceTypes())
	}

	workers := cfg.Workers
	if n, _ := cmd.Flags().GetInt("workers"); n > 0 {
		workers = n
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Debug("fetching device inventory", "device_type", deviceType, "container", dt.Container)
	inv := inventory.NewClient(cfg.Postgrest.Endpoint, cfg.Postgrest.Token, cfg.Postgrest.AppID)
	records, err := inv.DeviceRecords(ctx, dt.Container)
	if err != nil {
		return fmt.Errorf("failed to fetch inventory: %w", err)
	}

	targets, dropped := config.BuildTargets(dt, records)
	logger.Info("inventory loaded",
		"device_type", deviceType,
		"targets", len(targets),
		"dropped", dropped,
	)

	runner, err := commcheck.New(
		commcheck.WithWorkerCount(workers),
		commcheck.WithMaxAttempts(*cfg.MaxAttempts),
		commcheck.WithTimeout(cfg.Timeout.Duration()),
		commcheck.WithPrivilegedICMP(cfg.PrivilegedICMP),
		commcheck.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}

	results, err := runner.Execute(ctx, targets)
	if err != nil {
		return fmt.Errorf("comm check failed: %w", err)
	}

	rows := make([]commcheck.Record, len(results))
	for i, r := range results {
		rows[i] = r.Record()
	}

	if err := report.NewValidator().ValidateAll(rows); err != nil {
		return fmt.Errorf("batch failed schema validation: %w", err)
	}

	store, err := blob.New(cfg.S3.Bucket)
	if err != nil {
		return fmt.Errorf("failed to create S3 store: %w", err)
	}

	key := blob.Key(env, deviceType, time.Now().UTC())
	logger.Debug("uploading batch", "key", key, "rows", len(rows))
	if err := store.Upload(ctx, key, rows); err != nil {
		return fmt.Errorf("failed to upload batch: %w", err)
	}

	logger.Info("batch uploaded", "bucket", cfg.S3.Bucket, "key", key, "rows", len(rows))
	return nil
}
