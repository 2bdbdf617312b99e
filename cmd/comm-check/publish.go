package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/atd-dts/commcheck/config"
	"github.com/atd-dts/commcheck/internal/blob"
	"github.com/atd-dts/commcheck/internal/socrata"
)

// publishCmd forwards stored comm status batches to the open data portal.
var publishCmd = &cobra.Command{
	Use:   "publish <device_type>",
	Short: "Publish stored batches to the open data portal",
	Long: `Download comm status batch files from S3 and upsert them to the
open data portal dataset for the chosen environment.

Batches are stored one file per device type per day. The date range defaults
to today (UTC); use --start and --end to replay a range. Days with no stored
batch are skipped silently.

Example:
  comm-check publish camera -c config.yaml
  comm-check publish camera -c config.yaml -e prod --start 2026-08-01 --end 2026-08-24`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	publishCmd.Flags().StringP("env", "e", "dev", "environment (dev or prod)")
	publishCmd.Flags().String("start", "", "earliest batch date to publish, YYYY-MM-DD UTC (default today)")
	publishCmd.Flags().String("end", "", "latest batch date to publish, YYYY-MM-DD UTC (default today)")
	publishCmd.Flags().BoolP("verbose", "v", false, "set logger to DEBUG level")
	_ = publishCmd.MarkFlagRequired("config")
}

// parseDateFlag parses a YYYY-MM-DD flag value, defaulting to today (UTC).
func parseDateFlag(value string) (time.Time, error) {
	if value == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	d, err := time.ParseInLocation(blob.DateFormat, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date %q as YYYY-MM-DD", value)
	}
	return d, nil
}

func runPublish(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(verbose)

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	env, _ := cmd.Flags().GetString("env")
	datasetID, ok := cfg.DatasetID(env)
	if !ok {
		return fmt.Errorf("no dataset id configured for env %q", env)
	}

	deviceType := args[0]
	if _, ok := cfg.DeviceType(deviceType); !ok {
		return fmt.Errorf("unknown device type %q (supported: %v)", deviceType, cfg.SupportedDeviceTypes())
	}

	startFlag, _ := cmd.Flags().GetString("start")
	endFlag, _ := cmd.Flags().GetString("end")
	start, err := parseDateFlag(startFlag)
	if err != nil {
		return err
	}
	end, err := parseDateFlag(endFlag)
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("end date %s is before start date %s",
			end.Format(blob.DateFormat), start.Format(blob.DateFormat))
	}

	ctx := cmd.Context()

	days := blob.DateRange(start, end)
	candidates := make([]string, len(days))
	for i, d := range days {
		candidates[i] = blob.Key(env, deviceType, d)
	}
	prefixes := blob.Prefixes(env, deviceType, days)

	logger.Debug("checking for stored batches",
		"device_type", deviceType,
		"start", start.Format(blob.DateFormat),
		"end", end.Format(blob.DateFormat),
	)

	store, err := blob.New(cfg.S3.Bucket)
	if err != nil {
		return fmt.Errorf("failed to create S3 store: %w", err)
	}

	keys, err := store.ListExisting(ctx, prefixes, candidates)
	if err != nil {
		return fmt.Errorf("failed to list batches: %w", err)
	}

	logger.Info("batches found", "count", len(keys))
	if len(keys) == 0 {
		return nil
	}

	portal := socrata.NewClient(cfg.Socrata.Host, cfg.Socrata.AppToken, cfg.Socrata.Username, cfg.Socrata.Password)

	for _, key := range keys {
		rows, err := store.Download(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to download batch: %w", err)
		}

		logger.Debug("upserting batch", "key", key, "rows", len(rows))
		if err := portal.Upsert(ctx, datasetID, rows); err != nil {
			return fmt.Errorf("failed to publish %s: %w", key, err)
		}
		logger.Info("batch published", "key", key, "rows", len(rows), "dataset", datasetID)
	}

	return nil
}
