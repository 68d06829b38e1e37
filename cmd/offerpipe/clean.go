package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hamzaelk/offerpipe/internal/storage"
	"github.com/hamzaelk/offerpipe/internal/transform"
)

const cleanedKey = "cleaned.json"

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean enriched profiles for the warehouse",
	Long: "Reads enriched profiles from the enriched bucket, runs the bulk cleaning\n" +
		"pass (required fields, renames, skill flattening, dedup by URL) and writes\n" +
		"the cleaned records to the cleaned bucket.",
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
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

	records, err := storage.ReadOffers(ctx, store, cfg.Storage.EnrichedBucket, logger)
	if err != nil {
		logger.Error("failed to read enriched profiles", "error", err)
		return err
	}
	if len(records) == 0 {
		logger.Warn("nothing to clean", "bucket", cfg.Storage.EnrichedBucket)
		return nil
	}

	cleaned := transform.Clean(records, logger)
	logger.Info("cleaning complete",
		"records", len(records),
		"kept", len(cleaned),
		"dropped", len(records)-len(cleaned),
	)

	if err := store.EnsureBucket(ctx, cfg.Storage.CleanedBucket); err != nil {
		logger.Error("failed to ensure cleaned bucket", "error", err)
		return err
	}
	if err := storage.PutJSON(ctx, store, cfg.Storage.CleanedBucket, cleanedKey, cleaned); err != nil {
		logger.Error("failed to write cleaned offers", "error", err)
		return err
	}

	logger.Info("cleaned offers written",
		"bucket", cfg.Storage.CleanedBucket, "key", cleanedKey, "offers", len(cleaned))
	return nil
}
