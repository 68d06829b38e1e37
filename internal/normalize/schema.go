package normalize

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hamzaelk/offerpipe/internal/model"
)

// Offer maps a raw scraped record of any known source shape onto the
// canonical field set. It is total: unknown or missing fields become nil,
// and the job_url (possibly empty) is preserved exactly as scraped. Adding
// support for a new scraper means appending keys to the per-field priority
// chains below, nothing else. A nil logger mutes diagnostics.
func Offer(raw model.RawOffer, logger *slog.Logger) model.Offer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	url, _ := raw["job_url"].(string) // identity key, kept byte-for-byte
	o := model.Offer{
		JobURL:           url,
		Titre:            firstString(raw, "titre", "title", "job_title"),
		Companie:         firstString(raw, "companie", "compagnie", "company", "entreprise"),
		Description:      firstString(raw, "description", "mission"),
		Secteur:          firstString(raw, "secteur", "domaine"),
		Fonction:         firstString(raw, "fonction"),
		NiveauEtudes:     firstString(raw, "niveau_etudes", "niveau", "niveau_d'études"),
		NiveauExperience: firstString(raw, "niveau_experience", "experience"),
		Contrat:          firstString(raw, "contrat", "type_contrat"),
		Via:              firstString(raw, "via", "source"),
		Competences:      firstString(raw, "competences", "required_skills", "profil_requis"),
		Region:           firstString(raw, "region", "ville", "localisation"),
		Salaire:          firstString(raw, "salaire"),
		Extra:            firstString(raw, "extra"),
		Skills:           rawSkills(raw["skills"]),
	}

	// MarocAnnonces-shaped records split the description across a detail
	// title and a mission list.
	if o.Description == nil {
		detail := stringAt(raw, "titre_detail")
		missions := stringAt(raw, "missions")
		if joined := CleanText(detail + " " + missions); joined != "" {
			o.Description = &joined
		}
	}

	if d := firstString(raw, "publication_date", "date_publication", "publication_start"); d != nil {
		o.PublicationDate = DateAt(nowFunc(), *d)
		if o.PublicationDate == nil {
			logger.Warn("unparseable publication date", "value", *d, "job_url", url)
		}
	}

	return o
}

// firstString resolves a canonical field from a priority-ordered list of raw
// keys, returning the first present, non-empty value.
func firstString(raw model.RawOffer, keys ...string) *string {
	for _, k := range keys {
		if s := stringAt(raw, k); s != "" {
			return &s
		}
	}
	return nil
}

// stringAt coerces the raw value under key to a trimmed string. String
// slices (e.g. required_skills, via) are joined with ", ".
func stringAt(raw model.RawOffer, key string) string {
	switch v := raw[key].(type) {
	case string:
		return CleanText(v)
	case []any:
		var parts []string
		for _, e := range v {
			if s, ok := e.(string); ok && CleanText(s) != "" {
				parts = append(parts, CleanText(s))
			}
		}
		return strings.Join(parts, ", ")
	case []string:
		return CleanText(strings.Join(v, ", "))
	case float64:
		return fmt.Sprintf("%v", v)
	case nil:
		return ""
	default:
		return ""
	}
}

// rawSkills coerces the scraped skills value: either a nested
// {hard_skills, soft_skills} grouping or a flat list of names/objects.
// Unrecognized entries are dropped.
func rawSkills(v any) []model.Skill {
	switch s := v.(type) {
	case map[string]any:
		var out []model.Skill
		for _, group := range []string{"hard_skills", "soft_skills"} {
			typeSkill := "hard"
			if strings.Contains(group, "soft") {
				typeSkill = "soft"
			}
			list, _ := s[group].([]any)
			for _, e := range list {
				if name, ok := e.(string); ok && CleanText(name) != "" {
					out = append(out, model.Skill{Nom: CleanText(name), TypeSkill: typeSkill})
				}
			}
		}
		return out
	case []any:
		var out []model.Skill
		for _, e := range s {
			switch entry := e.(type) {
			case string:
				if CleanText(entry) != "" {
					out = append(out, model.Skill{Nom: CleanText(entry), TypeSkill: "hard"})
				}
			case map[string]any:
				nom, _ := entry["nom"].(string)
				typeSkill, _ := entry["type_skill"].(string)
				if typeSkill != "soft" {
					typeSkill = "hard"
				}
				if CleanText(nom) != "" {
					out = append(out, model.Skill{Nom: CleanText(nom), TypeSkill: typeSkill})
				}
			}
		}
		return out
	default:
		return nil
	}
}

// nowFunc is swapped out in tests that need a fixed clock.
var nowFunc = time.Now
