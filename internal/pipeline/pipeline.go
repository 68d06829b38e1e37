package pipeline

import (
	"context"
	"log/slog"

	"github.com/hamzaelk/offerpipe/internal/dedup"
	"github.com/hamzaelk/offerpipe/internal/enrich"
	"github.com/hamzaelk/offerpipe/internal/model"
	"github.com/hamzaelk/offerpipe/internal/pace"
)

// Enricher is the batch enrichment contract the runner drives. Satisfied by
// *enrich.Client. offset is the run-global index of offers[0], so fallback
// placeholders stay unique across batches.
type Enricher interface {
	EnrichBatch(ctx context.Context, offers []model.Offer, offset int) ([]model.Profile, []enrich.Outcome, error)
}

// Report summarizes one enrichment run.
type Report struct {
	Total         int // offers received
	Batches       int
	FailedBatches []int // 1-based batch numbers that did not complete
	Enriched      int   // profiles produced by the LLM
	Fallback      int   // profiles produced heuristically
	Duplicates    int   // dropped by signature dedup
	FilteredOut   int   // dropped by the data-profile gate
	Kept          int   // profiles in the final output
}

// Runner batches offers through an Enricher with pacing between calls,
// deduplicates the results globally and optionally keeps only data
// profiles.
type Runner struct {
	enricher  Enricher
	pacer     *pace.Pacer
	batchSize int
	dataOnly  bool
	logger    *slog.Logger
}

func NewRunner(enricher Enricher, pacer *pace.Pacer, batchSize int, dataOnly bool, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return &Runner{
		enricher:  enricher,
		pacer:     pacer,
		batchSize: batchSize,
		dataOnly:  dataOnly,
		logger:    logger,
	}
}

// Run enriches all offers and returns the retained profiles. A batch that
// fails is recorded in the report and the run moves on; the only returned
// error is context cancellation, with the profiles completed so far.
func (r *Runner) Run(ctx context.Context, offers []model.Offer) ([]model.Profile, Report, error) {
	report := Report{Total: len(offers)}
	if len(offers) == 0 {
		return nil, report, nil
	}

	seen := dedup.SignatureSet{}
	var profiles []model.Profile

	for start := 0; start < len(offers); start += r.batchSize {
		end := min(start+r.batchSize, len(offers))
		batch := offers[start:end]
		report.Batches++

		if r.pacer != nil {
			if err := r.pacer.Wait(ctx); err != nil {
				report.FailedBatches = append(report.FailedBatches, report.Batches)
				kept := r.finish(profiles, &report)
				report.Kept = len(kept)
				return kept, report, err
			}
		}

		r.logger.Info("enriching batch",
			"batch", report.Batches, "offers", len(batch))

		batchProfiles, outcomes, err := r.enricher.EnrichBatch(ctx, batch, start)
		if err != nil {
			report.FailedBatches = append(report.FailedBatches, report.Batches)
			if ctx.Err() != nil {
				kept := r.finish(profiles, &report)
				report.Kept = len(kept)
				return kept, report, err
			}
			r.logger.Warn("batch failed", "batch", report.Batches, "error", err)
			continue
		}

		for i, p := range batchProfiles {
			if outcomes[i] == enrich.OutcomeLLM {
				report.Enriched++
			} else {
				report.Fallback++
			}
			if !seen.Add(dedup.Signature(p)) {
				report.Duplicates++
				continue
			}
			profiles = append(profiles, p)
		}
	}

	kept := r.finish(profiles, &report)
	report.Kept = len(kept)
	return kept, report, nil
}

// finish applies the data-profile gate. When filtering would discard every
// profile the unfiltered set is kept instead: an over-aggressive gate must
// not turn a successful run into an empty one.
func (r *Runner) finish(profiles []model.Profile, report *Report) []model.Profile {
	if !r.dataOnly || len(profiles) == 0 {
		return profiles
	}
	var kept []model.Profile
	for _, p := range profiles {
		if p.IsDataProfile {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		r.logger.Warn("data-profile filter matched nothing, keeping all profiles",
			"profiles", len(profiles))
		return profiles
	}
	report.FilteredOut = len(profiles) - len(kept)
	return kept
}
