package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hamzaelk/offerpipe/internal/model"
	"github.com/hamzaelk/offerpipe/internal/retry"
)

// Outcome records how a profile was produced.
type Outcome int

const (
	OutcomeLLM Outcome = iota
	OutcomeFallback
)

func (o Outcome) String() string {
	if o == OutcomeFallback {
		return "fallback"
	}
	return "llm"
}

// Client enriches normalized offers into profiles through an LLMProvider.
// Every call produces a usable profile: when the provider fails or returns
// garbage past the retry budget, the heuristic fallback takes over.
type Client struct {
	provider   LLMProvider
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

func NewClient(provider LLMProvider, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		provider:   provider,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// EnrichOne enriches a single offer. It never fails: after maxRetries
// unusable responses the heuristic fallback profile is returned instead.
// index is the offer's position in the run, used to keep synthetic
// placeholder URLs distinct across the whole run.
func (c *Client) EnrichOne(ctx context.Context, offer model.Offer, index int) (model.Profile, Outcome) {
	prompt, err := renderPrompt(enrichOfferTemplate, promptData{Count: 1, Context: offerContext(offer)})
	if err != nil {
		c.logger.Warn("prompt rendering failed", "job_url", offer.JobURL, "error", err)
		return FallbackProfile(offer, index), OutcomeFallback
	}

	var profile model.Profile
	err = retry.Do(ctx, c.maxRetries, c.baseDelay, c.logger, func(ctx context.Context) error {
		raw, err := c.provider.Complete(ctx, prompt)
		if err != nil {
			return err
		}
		obj, err := ExtractObject(raw)
		if err != nil {
			return err
		}
		if nonEmptyFields(obj) < 2 {
			return fmt.Errorf("near-empty profile in response")
		}
		profile = profileFromMap(obj)
		return nil
	})
	if err != nil {
		c.logger.Warn("enrichment failed, using fallback profile",
			"job_url", offer.JobURL, "error", err)
		return FallbackProfile(offer, index), OutcomeFallback
	}

	finishProfile(&profile, offer)
	return profile, OutcomeLLM
}

// EnrichBatch enriches offers in a single LLM call and aligns the returned
// objects positionally with the input. The result always has one profile per
// offer; slots the model missed or mangled are filled with fallbacks. The
// only error returned is context cancellation.
//
// offset is the run-global index of offers[0]: fallback placeholder URLs
// are numbered offset+i so URL-less offers in different batches never
// collide and get collapsed by downstream URL dedup.
func (c *Client) EnrichBatch(ctx context.Context, offers []model.Offer, offset int) ([]model.Profile, []Outcome, error) {
	if len(offers) == 0 {
		return nil, nil, nil
	}

	prompt, err := renderPrompt(enrichBatchTemplate, promptData{
		Count:   len(offers),
		Context: batchContext(offers),
	})
	if err != nil {
		c.logger.Warn("prompt rendering failed", "offers", len(offers), "error", err)
		return c.allFallbacks(offers, offset)
	}

	var parsed []map[string]any
	err = retry.Do(ctx, c.maxRetries, c.baseDelay, c.logger, func(ctx context.Context) error {
		raw, err := c.provider.Complete(ctx, prompt)
		if err != nil {
			return err
		}
		objs, err := ExtractArray(raw)
		if err != nil {
			return err
		}
		parsed = objs
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, err
		}
		c.logger.Warn("batch enrichment exhausted retries, using fallback profiles",
			"offers", len(offers), "error", err)
		return c.allFallbacks(offers, offset)
	}

	if len(parsed) != len(offers) {
		c.logger.Warn("batch response count mismatch",
			"expected", len(offers), "got", len(parsed))
	}

	profiles := make([]model.Profile, len(offers))
	outcomes := make([]Outcome, len(offers))
	for i, offer := range offers {
		if i < len(parsed) && nonEmptyFields(parsed[i]) >= 2 {
			p := profileFromMap(parsed[i])
			finishProfile(&p, offer)
			profiles[i] = p
			outcomes[i] = OutcomeLLM
			continue
		}
		profiles[i] = FallbackProfile(offer, offset+i)
		outcomes[i] = OutcomeFallback
	}
	return profiles, outcomes, nil
}

func (c *Client) allFallbacks(offers []model.Offer, offset int) ([]model.Profile, []Outcome, error) {
	profiles := make([]model.Profile, len(offers))
	outcomes := make([]Outcome, len(offers))
	for i, offer := range offers {
		profiles[i] = FallbackProfile(offer, offset+i)
		outcomes[i] = OutcomeFallback
	}
	return profiles, outcomes, nil
}

// offerContext serializes an offer into the labeled block the prompt embeds.
func offerContext(offer model.Offer) string {
	var b strings.Builder
	line := func(label, value string) {
		if value == "" {
			value = "Non spécifié"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, value)
	}
	line("URL", offer.JobURL)
	line("Titre", model.Deref(offer.Titre))
	line("Entreprise", model.Deref(offer.Companie))
	line("Source", model.Deref(offer.Via))
	line("Date de publication", model.Deref(offer.PublicationDate))
	line("Type de contrat", model.Deref(offer.Contrat))
	line("Secteur", model.Deref(offer.Secteur))
	line("Fonction", model.Deref(offer.Fonction))
	line("Niveau d'études", model.Deref(offer.NiveauEtudes))
	line("Niveau d'expérience", model.Deref(offer.NiveauExperience))
	line("Région", model.Deref(offer.Region))
	line("Salaire", model.Deref(offer.Salaire))
	line("Compétences", model.Deref(offer.Competences))
	if extra := model.Deref(offer.Extra); extra != "" {
		line("Autres informations", extra)
	}

	b.WriteString("\nDESCRIPTION:\n")
	if desc := model.Deref(offer.Description); desc != "" {
		b.WriteString(desc)
	} else {
		b.WriteString("Non spécifiée")
	}
	b.WriteString("\n")

	if len(offer.Skills) > 0 {
		b.WriteString("\nCOMPÉTENCES DÉJÀ EXTRAITES:\n")
		for _, s := range offer.Skills {
			fmt.Fprintf(&b, "- %s (%s)\n", s.Nom, s.TypeSkill)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func batchContext(offers []model.Offer) string {
	blocks := make([]string, len(offers))
	for i, offer := range offers {
		blocks[i] = fmt.Sprintf("Offre %d:\n%s", i+1, offerContext(offer))
	}
	return strings.Join(blocks, "\n---\n")
}
