package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hamzaelk/offerpipe/internal/enrich"
	"github.com/hamzaelk/offerpipe/internal/model"
	"github.com/hamzaelk/offerpipe/internal/pace"
)

// scriptedProvider returns one canned completion per call.
type scriptedProvider struct {
	responses []string
	calls     int
}

func (s *scriptedProvider) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if s.calls > len(s.responses) {
		return "", fmt.Errorf("unexpected call %d", s.calls)
	}
	return s.responses[s.calls-1], nil
}

func batchResponse(start, n int) string {
	objs := make([]string, n)
	for i := range objs {
		objs[i] = fmt.Sprintf(`{"titre": "Profil %d", "compagnie": "Boîte %d", "contrat": "CDI",
			"description": "Profil enrichi numéro %d", "is_data_profile": true,
			"skills": [{"nom": "Python", "type_skill": "hard"}]}`, start+i, start+i, start+i)
	}
	return "Voici les profils :\n[" + strings.Join(objs, ",\n") + "]"
}

// Fifteen offers through the whole stack: real client, real extraction,
// real fallback. The middle batch returns garbage on every attempt and must
// degrade to heuristic profiles without losing a single record.
func TestEndToEndRun(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		batchResponse(0, 5),
		"désolé, pas de JSON aujourd'hui",
		"toujours pas de JSON",
		batchResponse(10, 5),
	}}
	client := enrich.NewClient(provider, 1, time.Millisecond, nil)
	r := NewRunner(client, pace.New(time.Millisecond), 5, false, nil)

	offers := makeOffers(15)
	profiles, report, err := r.Run(context.Background(), offers)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(profiles) != 15 {
		t.Fatalf("len = %d, want all 15 records preserved", len(profiles))
	}
	if report.Enriched != 10 || report.Fallback != 5 {
		t.Errorf("Enriched/Fallback = %d/%d, want 10/5", report.Enriched, report.Fallback)
	}
	if len(report.FailedBatches) != 0 {
		t.Errorf("FailedBatches = %v, degraded batches are not failures", report.FailedBatches)
	}
	if report.Duplicates != 0 {
		t.Errorf("Duplicates = %d", report.Duplicates)
	}

	for i, p := range profiles {
		if p.JobURL != offers[i].JobURL {
			t.Errorf("profile %d JobURL = %q, want %q", i, p.JobURL, offers[i].JobURL)
		}
		if len(p.Skills) == 0 {
			t.Errorf("profile %d has no skills", i)
		}
	}
	if provider.calls != 4 {
		t.Errorf("provider calls = %d, want 4 (one retry on the bad batch)", provider.calls)
	}
}

// Two offers without a URL land in separate batches; each gets a synthetic
// placeholder URL and the two must not collide, or downstream URL dedup would
// fold distinct records into one.
func TestRunKeepsDistinctPlaceholdersAcrossBatches(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"pas de JSON", "pas de JSON"}}
	client := enrich.NewClient(provider, 0, time.Millisecond, nil)
	r := NewRunner(client, pace.New(time.Millisecond), 1, false, nil)

	offers := []model.Offer{
		{Titre: model.Str("Analyste"), Description: model.Str("Analyse de données")},
		{Titre: model.Str("Ingénieur"), Description: model.Str("Pipelines de données")},
	}
	profiles, report, err := r.Run(context.Background(), offers)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(profiles) != 2 || report.Kept != 2 {
		t.Fatalf("kept %d profiles, want both records preserved", len(profiles))
	}
	if profiles[0].JobURL == profiles[1].JobURL {
		t.Errorf("both placeholders are %q, want distinct URLs", profiles[0].JobURL)
	}
	for i, p := range profiles {
		if p.JobURL != fmt.Sprintf("fallback://offer/%d", i) {
			t.Errorf("profile %d JobURL = %q", i, p.JobURL)
		}
	}
	if report.Fallback != 2 {
		t.Errorf("Fallback = %d, want 2", report.Fallback)
	}
}
