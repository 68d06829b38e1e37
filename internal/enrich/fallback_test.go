package enrich

import (
	"testing"

	"github.com/hamzaelk/offerpipe/internal/model"
)

func TestFallbackProfileKeepsIdentity(t *testing.T) {
	offer := model.Offer{
		JobURL:      "https://example.com/jobs/42",
		Titre:       model.Str("Développeur Cloud AWS"),
		Companie:    model.Str("Acme"),
		Description: model.Str("Conception d'architectures cloud sur AWS."),
		Contrat:     model.Str("CDD de 6 mois"),
	}
	p := FallbackProfile(offer, 3)

	if p.JobURL != offer.JobURL {
		t.Errorf("JobURL = %q, want input URL", p.JobURL)
	}
	if got := model.Deref(p.Secteur); got != "Informatique" {
		t.Errorf("Secteur = %q, want Informatique", got)
	}
	if got := model.Deref(p.Contrat); got != "CDD" {
		t.Errorf("Contrat = %q, want CDD", got)
	}
	if p.IsDataProfile {
		t.Error("fallback profile must not be flagged as data profile")
	}
}

func TestFallbackProfilePlaceholderURL(t *testing.T) {
	p := FallbackProfile(model.Offer{}, 7)
	if p.JobURL != "fallback://offer/7" {
		t.Errorf("JobURL = %q", p.JobURL)
	}
	if model.Deref(p.Compagnie) != "Entreprise non spécifiée" {
		t.Errorf("Compagnie = %q", model.Deref(p.Compagnie))
	}
	if model.Deref(p.Source) != "Source inconnue" {
		t.Errorf("Source = %q", model.Deref(p.Source))
	}
}

func TestFallbackProfileSkillsNeverEmpty(t *testing.T) {
	p := FallbackProfile(model.Offer{JobURL: "u"}, 0)
	if len(p.Skills) == 0 {
		t.Fatal("skills must never be empty")
	}
	for _, s := range p.Skills {
		if s.TypeSkill != "soft" {
			t.Errorf("default skill %q type = %q, want soft", s.Nom, s.TypeSkill)
		}
	}

	offer := model.Offer{JobURL: "u", Skills: []model.Skill{{Nom: "Python", TypeSkill: "hard"}}}
	p = FallbackProfile(offer, 0)
	if len(p.Skills) != 1 || p.Skills[0].Nom != "Python" {
		t.Errorf("skills = %v, want offer's own skills", p.Skills)
	}
}

func TestFallbackExperienceHeuristics(t *testing.T) {
	cases := []struct {
		exp  string
		want string
	}{
		{"Minimum 5 ans d'expérience", "expert"},
		{"Profil junior accepté", "junior"},
		{"Débutant bienvenu", "junior"},
		{"", "senior"},
	}
	for _, tc := range cases {
		p := FallbackProfile(model.Offer{JobURL: "u", NiveauExperience: model.Str(tc.exp)}, 0)
		if got := model.Deref(p.NiveauExperience); got != tc.want {
			t.Errorf("experience %q = %q, want %q", tc.exp, got, tc.want)
		}
	}
}

func TestMatchRulesFirstWins(t *testing.T) {
	text := "developpeur commercial"
	if got := matchRules(text, sectorRules, defaultSector); got != "Informatique" {
		t.Errorf("matchRules = %q, want first matching rule", got)
	}
	if got := matchRules("rien de connu", sectorRules, defaultSector); got != "Services" {
		t.Errorf("matchRules fallback = %q", got)
	}
}
