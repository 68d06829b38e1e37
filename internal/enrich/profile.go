package enrich

import (
	"strings"

	"github.com/hamzaelk/offerpipe/internal/model"
)

// profileFromMap builds a Profile from a parsed LLM object, defaulting every
// missing field instead of rejecting the record. Skills entries are coerced:
// bare strings become hard skills, entries with an invalid type are dropped.
func profileFromMap(m map[string]any) model.Profile {
	p := model.Profile{
		JobURL:           strField(m["job_url"]),
		DatePublication:  ptrField(m["date_publication"]),
		Source:           ptrField(m["source"]),
		Contrat:          ptrField(m["contrat"]),
		Titre:            ptrField(m["titre"]),
		Compagnie:        ptrField(m["compagnie"]),
		Secteur:          ptrField(m["secteur"]),
		NiveauEtudes:     ptrField(m["niveau_etudes"]),
		NiveauExperience: ptrField(m["niveau_experience"]),
		Description:      ptrField(m["description"]),
		Skills:           coerceSkills(m["skills"]),
	}
	if b, ok := m["is_data_profile"].(bool); ok {
		p.IsDataProfile = b
	}
	return p
}

// strField coerces a raw value to a plain string ("" when absent).
func strField(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		var parts []string
		for _, e := range t {
			if s, ok := e.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

func ptrField(v any) *string {
	return model.Str(strField(v))
}

func coerceSkills(v any) []model.Skill {
	list, ok := v.([]any)
	if !ok {
		return []model.Skill{}
	}
	skills := make([]model.Skill, 0, len(list))
	for _, e := range list {
		switch entry := e.(type) {
		case string:
			if s := strings.TrimSpace(entry); s != "" {
				skills = append(skills, model.Skill{Nom: s, TypeSkill: "hard"})
			}
		case map[string]any:
			nom, _ := entry["nom"].(string)
			typeSkill, _ := entry["type_skill"].(string)
			nom = strings.TrimSpace(nom)
			if nom == "" || (typeSkill != "hard" && typeSkill != "soft") {
				continue // malformed entry
			}
			skills = append(skills, model.Skill{Nom: nom, TypeSkill: typeSkill})
		}
	}
	return skills
}

// nonEmptyFields counts the filled values of a parsed LLM object; profiles
// with fewer than two are near-empty hallucinations and are rejected.
func nonEmptyFields(m map[string]any) int {
	n := 0
	for _, v := range m {
		switch t := v.(type) {
		case nil:
		case string:
			if strings.TrimSpace(t) != "" {
				n++
			}
		case []any:
			if len(t) > 0 {
				n++
			}
		default:
			n++
		}
	}
	return n
}

// finishProfile enforces the two output invariants: job_url is the input
// offer's URL whenever the offer has one (enrichment must not lose
// identity), and the skills list is never empty.
func finishProfile(p *model.Profile, offer model.Offer) {
	if offer.JobURL != "" {
		p.JobURL = offer.JobURL
	}
	if len(p.Skills) == 0 {
		if len(offer.Skills) > 0 {
			p.Skills = append([]model.Skill(nil), offer.Skills...)
		} else {
			p.Skills = append([]model.Skill(nil), defaultSoftSkills...)
		}
	}
}
