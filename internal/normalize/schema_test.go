package normalize

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/hamzaelk/offerpipe/internal/model"
)

func withFixedNow(t *testing.T) {
	t.Helper()
	prev := nowFunc
	nowFunc = func() time.Time { return testNow }
	t.Cleanup(func() { nowFunc = prev })
}

func TestOffer_RekruteShape(t *testing.T) {
	withFixedNow(t)

	raw := model.RawOffer{
		"job_url":           "https://www.rekrute.com/offre-123.html",
		"job_title":         "Data Engineer",
		"entreprise":        "Acme Maroc",
		"mission":           "Construire des pipelines de données.",
		"niveau":            "Bac +5",
		"experience":        "De 3 à 5 ans",
		"type_contrat":      "CDI",
		"ville":             "Casablanca",
		"required_skills":   []any{"Python", "Spark"},
		"publication_start": "20/05/2025",
		"secteur":           "Informatique",
	}

	o := Offer(raw, nil)

	if o.JobURL != "https://www.rekrute.com/offre-123.html" {
		t.Errorf("JobURL = %q, want preserved exactly", o.JobURL)
	}
	if model.Deref(o.Titre) != "Data Engineer" {
		t.Errorf("Titre = %v", o.Titre)
	}
	if model.Deref(o.Companie) != "Acme Maroc" {
		t.Errorf("Companie = %v", o.Companie)
	}
	if model.Deref(o.Description) != "Construire des pipelines de données." {
		t.Errorf("Description = %v", o.Description)
	}
	if model.Deref(o.Contrat) != "CDI" {
		t.Errorf("Contrat = %v", o.Contrat)
	}
	if model.Deref(o.Region) != "Casablanca" {
		t.Errorf("Region (from ville) = %v", o.Region)
	}
	if model.Deref(o.Competences) != "Python, Spark" {
		t.Errorf("Competences = %v", o.Competences)
	}
	if model.Deref(o.PublicationDate) != "2025-05-20" {
		t.Errorf("PublicationDate = %v, want 2025-05-20", o.PublicationDate)
	}
	if o.Salaire != nil || o.Fonction != nil {
		t.Error("expected nil for fields absent from the raw record")
	}
}

func TestOffer_EmploisMaShape(t *testing.T) {
	withFixedNow(t)

	raw := model.RawOffer{
		"job_url":          "https://www.emplois.ma/offre/42",
		"title":            "Développeur Fullstack",
		"company":          "WebCo",
		"description":      "Stack React et Go.",
		"competences":      "React, Go, Docker",
		"niveau_etudes":    "Master",
		"publication_date": "2025-06-01",
		"via":              "emplois.ma",
	}

	o := Offer(raw, nil)

	if model.Deref(o.Titre) != "Développeur Fullstack" {
		t.Errorf("Titre = %v", o.Titre)
	}
	if model.Deref(o.Via) != "emplois.ma" {
		t.Errorf("Via = %v", o.Via)
	}
	if model.Deref(o.Competences) != "React, Go, Docker" {
		t.Errorf("Competences = %v", o.Competences)
	}
	if model.Deref(o.PublicationDate) != "2025-06-01" {
		t.Errorf("PublicationDate = %v", o.PublicationDate)
	}
	if model.Deref(o.Secteur) != "" {
		t.Errorf("Secteur = %v, want nil", o.Secteur)
	}
}

func TestOffer_BaytShapeNestedSkills(t *testing.T) {
	withFixedNow(t)

	raw := model.RawOffer{
		"job_url":  "https://www.bayt.com/job/99",
		"titre":    "ML Engineer",
		"companie": "DataCorp",
		"domaine":  "IT",
		"skills": map[string]any{
			"hard_skills": []any{"Python", "TensorFlow"},
			"soft_skills": []any{"Communication"},
		},
	}

	o := Offer(raw, nil)

	if model.Deref(o.Secteur) != "IT" {
		t.Errorf("Secteur (from domaine) = %v", o.Secteur)
	}
	want := []model.Skill{
		{Nom: "Python", TypeSkill: "hard"},
		{Nom: "TensorFlow", TypeSkill: "hard"},
		{Nom: "Communication", TypeSkill: "soft"},
	}
	if len(o.Skills) != len(want) {
		t.Fatalf("Skills = %v, want %v", o.Skills, want)
	}
	for i := range want {
		if o.Skills[i] != want[i] {
			t.Errorf("Skills[%d] = %v, want %v", i, o.Skills[i], want[i])
		}
	}
}

func TestOffer_MarocAnnoncesCompositeDescription(t *testing.T) {
	withFixedNow(t)

	raw := model.RawOffer{
		"job_url":      "https://www.marocannonces.com/annonce/7",
		"titre":        "Comptable",
		"titre_detail": "Comptable confirmé à Rabat.",
		"missions":     []any{"Tenue de la comptabilité", "Déclarations fiscales"},
	}

	o := Offer(raw, nil)

	want := "Comptable confirmé à Rabat. Tenue de la comptabilité, Déclarations fiscales"
	if model.Deref(o.Description) != want {
		t.Errorf("Description = %q, want %q", model.Deref(o.Description), want)
	}
}

func TestOffer_WarnsOnUnparseableDate(t *testing.T) {
	withFixedNow(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	o := Offer(model.RawOffer{
		"job_url":          "https://x/1",
		"titre":            "Dev",
		"publication_date": "total gibberish",
	}, logger)

	if o.PublicationDate != nil {
		t.Errorf("PublicationDate = %q, want nil", model.Deref(o.PublicationDate))
	}
	log := buf.String()
	if !strings.Contains(log, "level=WARN") || !strings.Contains(log, "total gibberish") {
		t.Errorf("expected a warning naming the rejected value, got %q", log)
	}
}

func TestOffer_TotalOnEmptyRecord(t *testing.T) {
	o := Offer(model.RawOffer{}, nil)
	if o.JobURL != "" {
		t.Errorf("JobURL = %q, want empty", o.JobURL)
	}
	if o.Titre != nil || o.Skills != nil || o.PublicationDate != nil {
		t.Error("expected all optional fields nil for empty record")
	}
}

func TestFold(t *testing.T) {
	if got := Fold("  Développeur   SÉNIOR "); got != "developpeur senior" {
		t.Errorf("Fold = %q", got)
	}
	if got := Fold(""); got != "" {
		t.Errorf("Fold(empty) = %q", got)
	}
}
