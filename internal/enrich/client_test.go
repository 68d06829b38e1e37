package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hamzaelk/offerpipe/internal/model"
)

// mockProvider returns canned responses in order; when the list runs out the
// last entry repeats.
type mockProvider struct {
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (m *mockProvider) Complete(ctx context.Context, prompt string) (string, error) {
	m.calls++
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	i := m.calls - 1
	if i >= len(m.responses) {
		i = len(m.responses) - 1
	}
	return m.responses[i], nil
}

func testOffer(url, titre string) model.Offer {
	return model.Offer{
		JobURL:      url,
		Titre:       model.Str(titre),
		Companie:    model.Str("Acme"),
		Description: model.Str("Développement d'applications data."),
	}
}

func TestEnrichOneSuccess(t *testing.T) {
	provider := &mockProvider{responses: []string{
		`{"job_url": "wrong", "titre": "Data Engineer", "secteur": "Informatique",
		  "skills": [{"nom": "Python", "type_skill": "hard"}], "is_data_profile": true}`,
	}}
	c := NewClient(provider, 3, time.Millisecond, nil)

	p, outcome := c.EnrichOne(context.Background(), testOffer("https://x/1", "Data Engineer"), 0)
	if outcome != OutcomeLLM {
		t.Fatalf("outcome = %v, want llm", outcome)
	}
	if p.JobURL != "https://x/1" {
		t.Errorf("JobURL = %q, identity must come from the input offer", p.JobURL)
	}
	if !p.IsDataProfile {
		t.Error("is_data_profile lost")
	}
	if len(p.Skills) != 1 || p.Skills[0].Nom != "Python" {
		t.Errorf("skills = %v", p.Skills)
	}
	if provider.calls != 1 {
		t.Errorf("calls = %d, want 1", provider.calls)
	}
}

func TestEnrichOneMalformedThenRecovers(t *testing.T) {
	provider := &mockProvider{responses: []string{
		"je ne peux pas produire de JSON",
		`{"titre": "Analyste", "contrat": "CDI"}`,
	}}
	c := NewClient(provider, 3, time.Millisecond, nil)

	p, outcome := c.EnrichOne(context.Background(), testOffer("https://x/2", "Analyste"), 0)
	if outcome != OutcomeLLM {
		t.Fatalf("outcome = %v, want llm after retry", outcome)
	}
	if provider.calls != 2 {
		t.Errorf("calls = %d, want 2", provider.calls)
	}
	if model.Deref(p.Contrat) != "CDI" {
		t.Errorf("Contrat = %q", model.Deref(p.Contrat))
	}
}

func TestEnrichOneFallbackAfterExhaustion(t *testing.T) {
	provider := &mockProvider{err: errors.New("connection refused")}
	c := NewClient(provider, 2, time.Millisecond, nil)

	p, outcome := c.EnrichOne(context.Background(), testOffer("https://x/3", "Dev"), 0)
	if outcome != OutcomeFallback {
		t.Fatalf("outcome = %v, want fallback", outcome)
	}
	if p.JobURL != "https://x/3" {
		t.Errorf("JobURL = %q, fallback must keep identity", p.JobURL)
	}
	if len(p.Skills) == 0 {
		t.Error("fallback skills empty")
	}
	if provider.calls != 3 { // first try + 2 retries
		t.Errorf("calls = %d, want 3", provider.calls)
	}
}

func TestEnrichOneRejectsNearEmptyProfile(t *testing.T) {
	provider := &mockProvider{responses: []string{`{"titre": "Dev"}`}}
	c := NewClient(provider, 1, time.Millisecond, nil)

	_, outcome := c.EnrichOne(context.Background(), testOffer("https://x/4", "Dev"), 0)
	if outcome != OutcomeFallback {
		t.Fatalf("outcome = %v, near-empty profiles must be rejected", outcome)
	}
	if provider.calls != 2 {
		t.Errorf("calls = %d, want retries before fallback", provider.calls)
	}
}

func TestEnrichBatchAlignsByPosition(t *testing.T) {
	provider := &mockProvider{responses: []string{
		`[{"titre": "P1", "contrat": "CDI"},
		  {},
		  {"titre": "P3", "contrat": "CDD"}]`,
	}}
	c := NewClient(provider, 3, time.Millisecond, nil)

	offers := []model.Offer{
		testOffer("https://x/a", "A"),
		testOffer("https://x/b", "B"),
		testOffer("https://x/c", "C"),
	}
	profiles, outcomes, err := c.EnrichBatch(context.Background(), offers, 0)
	if err != nil {
		t.Fatalf("EnrichBatch: %v", err)
	}
	if len(profiles) != 3 {
		t.Fatalf("len = %d, want one profile per offer", len(profiles))
	}
	if outcomes[0] != OutcomeLLM || outcomes[2] != OutcomeLLM {
		t.Errorf("outcomes = %v, slots 0 and 2 should be llm", outcomes)
	}
	if outcomes[1] != OutcomeFallback {
		t.Errorf("empty object in slot 1 should trigger fallback, got %v", outcomes[1])
	}
	for i, p := range profiles {
		if p.JobURL != offers[i].JobURL {
			t.Errorf("profile %d JobURL = %q, want %q", i, p.JobURL, offers[i].JobURL)
		}
	}
}

func TestEnrichBatchShortResponsePadsWithFallbacks(t *testing.T) {
	provider := &mockProvider{responses: []string{
		`[{"titre": "Seul", "contrat": "CDI"}]`,
	}}
	c := NewClient(provider, 1, time.Millisecond, nil)

	offers := []model.Offer{testOffer("https://x/a", "A"), testOffer("https://x/b", "B")}
	profiles, outcomes, err := c.EnrichBatch(context.Background(), offers, 0)
	if err != nil {
		t.Fatalf("EnrichBatch: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("len = %d, want 2", len(profiles))
	}
	if outcomes[0] != OutcomeLLM || outcomes[1] != OutcomeFallback {
		t.Errorf("outcomes = %v", outcomes)
	}
	if profiles[1].JobURL != "https://x/b" {
		t.Errorf("padded profile JobURL = %q", profiles[1].JobURL)
	}
}

func TestEnrichBatchAllFallbackOnProviderFailure(t *testing.T) {
	provider := &mockProvider{err: errors.New("boom")}
	c := NewClient(provider, 1, time.Millisecond, nil)

	offers := []model.Offer{testOffer("https://x/a", "A"), testOffer("https://x/b", "B")}
	profiles, outcomes, err := c.EnrichBatch(context.Background(), offers, 0)
	if err != nil {
		t.Fatalf("EnrichBatch: %v", err)
	}
	for i, o := range outcomes {
		if o != OutcomeFallback {
			t.Errorf("outcome %d = %v, want fallback", i, o)
		}
		if profiles[i].JobURL != offers[i].JobURL {
			t.Errorf("profile %d lost its URL", i)
		}
	}
}

func TestEnrichBatchPlaceholderURLsUseRunOffset(t *testing.T) {
	provider := &mockProvider{err: errors.New("boom")}
	c := NewClient(provider, 0, time.Millisecond, nil)

	offers := []model.Offer{
		{Titre: model.Str("Sans URL A")},
		{Titre: model.Str("Sans URL B")},
	}
	profiles, _, err := c.EnrichBatch(context.Background(), offers, 5)
	if err != nil {
		t.Fatalf("EnrichBatch: %v", err)
	}
	if profiles[0].JobURL != "fallback://offer/5" || profiles[1].JobURL != "fallback://offer/6" {
		t.Errorf("placeholder URLs = %q, %q, want offset-based numbering",
			profiles[0].JobURL, profiles[1].JobURL)
	}
}

func TestEnrichBatchCancelledContext(t *testing.T) {
	provider := &mockProvider{err: errors.New("boom")}
	c := NewClient(provider, 5, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := c.EnrichBatch(ctx, []model.Offer{testOffer("https://x/a", "A")}, 0)
	if err == nil {
		t.Fatal("expected error when context is cancelled")
	}
}

func TestEnrichBatchEmpty(t *testing.T) {
	c := NewClient(&mockProvider{}, 1, time.Millisecond, nil)
	profiles, outcomes, err := c.EnrichBatch(context.Background(), nil, 0)
	if err != nil || profiles != nil || outcomes != nil {
		t.Errorf("empty batch: %v %v %v", profiles, outcomes, err)
	}
}

func TestBatchPromptMentionsCountAndOffers(t *testing.T) {
	provider := &mockProvider{responses: []string{`[{"titre": "A", "contrat": "CDI"}, {"titre": "B", "contrat": "CDD"}]`}}
	c := NewClient(provider, 1, time.Millisecond, nil)

	offers := []model.Offer{testOffer("https://x/a", "Premier"), testOffer("https://x/b", "Second")}
	if _, _, err := c.EnrichBatch(context.Background(), offers, 0); err != nil {
		t.Fatalf("EnrichBatch: %v", err)
	}
	prompt := provider.prompts[0]
	if !strings.Contains(prompt, fmt.Sprintf("%d", len(offers))) {
		t.Error("prompt does not state the expected object count")
	}
	if !strings.Contains(prompt, "Premier") || !strings.Contains(prompt, "Second") {
		t.Error("prompt missing offer context")
	}
}

func TestProfileFromMapCoercions(t *testing.T) {
	p := profileFromMap(map[string]any{
		"titre":   "Dev",
		"secteur": []any{"Informatique", "Télécoms"},
		"skills": []any{
			"SQL",
			map[string]any{"nom": "Python", "type_skill": "hard"},
			map[string]any{"nom": "Empathie", "type_skill": "soft"},
			map[string]any{"nom": "Cassé", "type_skill": "autre"},
			map[string]any{"type_skill": "hard"},
		},
		"is_data_profile": true,
	})
	if got := model.Deref(p.Secteur); got != "Informatique, Télécoms" {
		t.Errorf("Secteur = %q", got)
	}
	if len(p.Skills) != 3 {
		t.Fatalf("skills = %v, want 3 valid entries", p.Skills)
	}
	if p.Skills[0].Nom != "SQL" || p.Skills[0].TypeSkill != "hard" {
		t.Errorf("bare string skill = %v, want hard", p.Skills[0])
	}
	if !p.IsDataProfile {
		t.Error("is_data_profile not carried")
	}
}
