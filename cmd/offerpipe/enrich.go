package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hamzaelk/offerpipe/internal/enrich"
	"github.com/hamzaelk/offerpipe/internal/model"
	"github.com/hamzaelk/offerpipe/internal/normalize"
	"github.com/hamzaelk/offerpipe/internal/pace"
	"github.com/hamzaelk/offerpipe/internal/pipeline"
	"github.com/hamzaelk/offerpipe/internal/storage"
)

const enrichedKey = "profiles.json"

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich raw offers into structured profiles",
	Long: "Reads raw scraped offers from the raw bucket, normalizes them to the\n" +
		"canonical schema, enriches them batch by batch through the LLM and writes\n" +
		"the resulting profiles to the enriched bucket.",
	RunE: runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}
	if err := cfg.ValidateLLM(); err != nil {
		logger.Error("llm config invalid", "error", err)
		return err
	}

	store, err := setupStore(cfg, logger)
	if err != nil {
		logger.Error("failed to set up storage", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	raw, err := storage.ReadOffers(ctx, store, cfg.Storage.RawBucket, logger)
	if err != nil {
		logger.Error("failed to read raw offers", "error", err)
		return err
	}
	if len(raw) == 0 {
		logger.Warn("no offers to enrich", "bucket", cfg.Storage.RawBucket)
		return nil
	}

	offers := make([]model.Offer, len(raw))
	for i, rec := range raw {
		offers[i] = normalize.Offer(rec, logger)
	}

	httpClient := &http.Client{Timeout: cfg.LLM.Timeout}
	provider := enrich.NewChatProvider(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Stream, httpClient)
	client := enrich.NewClient(provider, cfg.Enrich.MaxRetries, cfg.Enrich.BatchDelay, logger)
	runner := pipeline.NewRunner(client, pace.New(cfg.Enrich.BatchDelay), cfg.Enrich.BatchSize, cfg.Enrich.DataOnly, logger)

	profiles, report, err := runner.Run(ctx, offers)
	if err != nil {
		logger.Error("enrichment interrupted", "error", err, "profiles_done", len(profiles))
		return err
	}

	logger.Info("enrichment complete",
		"offers", report.Total,
		"batches", report.Batches,
		"failed_batches", report.FailedBatches,
		"llm", report.Enriched,
		"fallback", report.Fallback,
		"duplicates", report.Duplicates,
		"filtered_out", report.FilteredOut,
		"kept", report.Kept,
	)

	summary := pipeline.Summarize(profiles, 10)
	logger.Info("profile summary",
		"data_profiles", summary.DataProfiles,
		"contracts", summary.Contracts,
		"experience", summary.Experience,
		"top_skills", summary.TopSkills,
	)

	if err := store.EnsureBucket(ctx, cfg.Storage.EnrichedBucket); err != nil {
		logger.Error("failed to ensure enriched bucket", "error", err)
		return err
	}
	if err := storage.PutJSON(ctx, store, cfg.Storage.EnrichedBucket, enrichedKey, profiles); err != nil {
		logger.Error("failed to write profiles", "error", err)
		return err
	}

	logger.Info("profiles written",
		"bucket", cfg.Storage.EnrichedBucket, "key", enrichedKey, "profiles", len(profiles))
	return nil
}
