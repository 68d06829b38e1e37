package enrich

import (
	"fmt"
	"strings"
	"time"

	"github.com/hamzaelk/offerpipe/internal/model"
	"github.com/hamzaelk/offerpipe/internal/normalize"
)

// KeywordRule maps a keyword vocabulary to a category. Rules are evaluated
// in order against accent-folded text, first match wins. Keeping them as
// data rather than inline conditionals lets the vocabularies be tested and
// extended independently of the retry logic.
type KeywordRule struct {
	Category string
	Keywords []string
}

// Keywords are written unaccented; matching happens on normalize.Fold output.
var (
	sectorRules = []KeywordRule{
		{"Informatique", []string{"aws", "cloud", "architect", "data", "developpeur", "informatique", "tech"}},
		{"Commerce/Marketing", []string{"commercial", "vente", "marketing"}},
		{"Finance", []string{"finance", "comptable"}},
		{"Santé", []string{"sante", "medical"}},
	}
	defaultSector = "Services"

	contractRules = []KeywordRule{
		{"CDI", []string{"cdi"}},
		{"CDD", []string{"cdd"}},
		{"Freelance", []string{"freelance"}},
		{"Stage", []string{"stage"}},
	}
	defaultContract = "CDI"

	experienceRules = []KeywordRule{
		{"expert", []string{"5 ans", "10 ans", "senior", "expert"}},
		{"junior", []string{"junior", "debutant", "1 an", "2 ans"}},
	}
	defaultExperience = "senior"
)

// defaultSoftSkills backfills profiles with no skill information at all, so
// an enriched profile never carries an empty skill set.
var defaultSoftSkills = []model.Skill{
	{Nom: "Communication", TypeSkill: "soft"},
	{Nom: "Travail d'équipe", TypeSkill: "soft"},
	{Nom: "Résolution de problèmes", TypeSkill: "soft"},
	{Nom: "Adaptabilité", TypeSkill: "soft"},
}

// matchRules returns the category of the first rule with a keyword present
// in text (already folded), or fallback when none match.
func matchRules(text string, rules []KeywordRule, fallback string) string {
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if text != "" && strings.Contains(text, kw) {
				return rule.Category
			}
		}
	}
	return fallback
}

// FallbackProfile synthesizes a deterministic profile from heuristic
// keyword rules when the LLM path is exhausted. It degrades information
// quality, never record count: every offer gets some profile.
func FallbackProfile(offer model.Offer, index int) model.Profile {
	content := normalize.Fold(model.Deref(offer.Titre) + " " + model.Deref(offer.Description))

	url := offer.JobURL
	if url == "" {
		url = fmt.Sprintf("fallback://offer/%d", index)
	}

	date := offer.PublicationDate
	if date == nil {
		date = model.Str(time.Now().Format("2006-01-02"))
	}

	skills := offer.Skills
	if len(skills) == 0 {
		skills = append([]model.Skill(nil), defaultSoftSkills...)
	}

	return model.Profile{
		JobURL:           url,
		DatePublication:  date,
		Source:           orStr(offer.Via, "Source inconnue"),
		Contrat:          model.Str(matchRules(normalize.Fold(model.Deref(offer.Contrat)), contractRules, defaultContract)),
		Titre:            orStr(offer.Titre, fmt.Sprintf("Offre %d", index+1)),
		Compagnie:        orStr(offer.Companie, "Entreprise non spécifiée"),
		Secteur:          model.Str(matchRules(content, sectorRules, defaultSector)),
		NiveauEtudes:     orStr(offer.NiveauEtudes, "Master"),
		NiveauExperience: model.Str(matchRules(normalize.Fold(model.Deref(offer.NiveauExperience)), experienceRules, defaultExperience)),
		Description:      orStr(offer.Description, ""),
		Skills:           skills,
		IsDataProfile:    false,
	}
}

// orStr prefers the offer's own value; an empty fallback yields nil (null).
func orStr(p *string, fallback string) *string {
	if p != nil && *p != "" {
		return p
	}
	return model.Str(fallback)
}
