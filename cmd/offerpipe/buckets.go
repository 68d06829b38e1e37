package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "Create the pipeline buckets",
	Long:  "Ensures the raw, enriched and cleaned buckets exist in the configured storage backend.",
	RunE:  runBuckets,
}

func init() {
	rootCmd.AddCommand(bucketsCmd)
}

func runBuckets(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	store, err := setupStore(cfg, logger)
	if err != nil {
		logger.Error("failed to set up storage", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for _, bucket := range []string{
		cfg.Storage.RawBucket,
		cfg.Storage.EnrichedBucket,
		cfg.Storage.CleanedBucket,
	} {
		if err := store.EnsureBucket(ctx, bucket); err != nil {
			logger.Error("failed to ensure bucket", "bucket", bucket, "error", err)
			return err
		}
		logger.Info("bucket ready", "bucket", bucket)
	}
	return nil
}
