package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hamzaelk/offerpipe/internal/storage"
	"github.com/hamzaelk/offerpipe/internal/transform"
	"github.com/hamzaelk/offerpipe/internal/warehouse"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load cleaned offers into the warehouse",
	Long: "Reads cleaned offers from the cleaned bucket and upserts them into the\n" +
		"SQLite warehouse by job_url.",
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
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

	offers, err := readCleaned(ctx, store, cfg.Storage.CleanedBucket)
	if err != nil {
		logger.Error("failed to read cleaned offers", "error", err)
		return err
	}
	if len(offers) == 0 {
		logger.Warn("nothing to load", "bucket", cfg.Storage.CleanedBucket)
		return nil
	}

	wh, err := warehouse.Open(cfg.Warehouse.Path)
	if err != nil {
		logger.Error("failed to open warehouse", "error", err)
		return err
	}
	defer wh.Close()

	if err := wh.Load(offers); err != nil {
		logger.Error("load failed", "error", err)
		return err
	}

	total, err := wh.Count()
	if err != nil {
		logger.Error("failed to count offers", "error", err)
		return err
	}
	logger.Info("load complete",
		"loaded", len(offers), "warehouse_total", total, "db", cfg.Warehouse.Path)
	return nil
}

// readCleaned aggregates every .json object in bucket as cleaned offers.
func readCleaned(ctx context.Context, store storage.ObjectStore, bucket string) ([]transform.CleanedOffer, error) {
	keys, err := store.List(ctx, bucket, ".json")
	if err != nil {
		return nil, err
	}

	var offers []transform.CleanedOffer
	for _, key := range keys {
		data, err := store.Get(ctx, bucket, key)
		if err != nil {
			return nil, err
		}
		var list []transform.CleanedOffer
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		offers = append(offers, list...)
	}
	return offers, nil
}
