package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hamzaelk/offerpipe/internal/browse"
	"github.com/hamzaelk/offerpipe/internal/storage"
)

var browseBucket string

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse pipeline output interactively",
	Long: "Opens a terminal viewer over the records of a bucket (enriched profiles\n" +
		"by default, or any bucket via --bucket).",
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVar(&browseBucket, "bucket", "", "bucket to browse (default: the enriched bucket)")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
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

	bucket := browseBucket
	if bucket == "" {
		bucket = cfg.Storage.EnrichedBucket
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	offers, err := storage.ReadOffers(ctx, store, bucket, logger)
	if err != nil {
		logger.Error("failed to read bucket", "bucket", bucket, "error", err)
		return err
	}
	if len(offers) == 0 {
		return fmt.Errorf("bucket %s holds no offers", bucket)
	}

	return browse.Run(bucket, offers)
}
