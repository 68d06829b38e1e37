package transform

import (
	"log/slog"
	"regexp"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hamzaelk/offerpipe/internal/model"
	"github.com/hamzaelk/offerpipe/internal/normalize"
)

// Unspecified fills scalar fields that are still empty after cleaning. The
// enrichment path uses null for the same situation; the warehouse-facing
// output uses this sentinel instead.
const Unspecified = "Unspecified"

// CleanedOffer is the warehouse-facing record: renamed fields, list-valued
// secteur, flat skills, no nulls.
type CleanedOffer struct {
	JobURL           string        `json:"job_url"`
	Titre            string        `json:"titre"`
	DatePublication  string        `json:"date_publication"` // YYYY-MM-DD or Unspecified
	Source           string        `json:"source"`
	Compagnie        string        `json:"compagnie"`
	Description      string        `json:"description"`
	Secteur          []string      `json:"secteur"`
	Fonction         string        `json:"fonction"`
	NiveauEtudes     string        `json:"niveau_etudes"`
	NiveauExperience string        `json:"niveau_experience"`
	Contrat          string        `json:"contrat"`
	Region           string        `json:"region"`
	Salaire          string        `json:"salaire"`
	Skills           []model.Skill `json:"skills"`
}

var commaRe = regexp.MustCompile(`,\s*`)

const chunkSize = 256

// Clean runs the bulk cleaning pass over the full corpus: required-field
// filter, renames, multi-value splits, skill flattening, date
// normalization, first-wins dedup by job_url, sentinel fill. Records are
// processed in parallel chunks; the call blocks until the corpus is done
// and output order follows input order. A nil logger mutes diagnostics.
func Clean(records []model.RawOffer, logger *slog.Logger) []CleanedOffer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cleaned := make([]*CleanedOffer, len(records))

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for start := 0; start < len(records); start += chunkSize {
		end := min(start+chunkSize, len(records))
		g.Go(func() error {
			for i := start; i < end; i++ {
				cleaned[i] = cleanRecord(records[i], logger)
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	// first occurrence of a job_url wins
	seen := make(map[string]struct{}, len(records))
	out := make([]CleanedOffer, 0, len(records))
	for _, c := range cleaned {
		if c == nil {
			continue
		}
		if _, dup := seen[c.JobURL]; dup {
			continue
		}
		seen[c.JobURL] = struct{}{}
		out = append(out, *c)
	}
	return out
}

// cleanRecord cleans one record, or returns nil when a required field is
// missing (a filter, not an error).
func cleanRecord(rec model.RawOffer, logger *slog.Logger) *CleanedOffer {
	jobURL := getString(rec, "job_url")
	titre := getString(rec, "titre", "title")
	source := getString(rec, "via", "source")
	pubDate := getString(rec, "publication_date", "date_publication")
	if jobURL == "" || titre == "" || source == "" || pubDate == "" {
		return nil
	}

	date := Unspecified
	if d := normalize.Date(pubDate); d != nil {
		date = *d
	} else {
		logger.Warn("unparseable publication date", "value", pubDate, "job_url", jobURL)
	}

	return &CleanedOffer{
		JobURL:           jobURL,
		Titre:            titre,
		DatePublication:  date,
		Source:           source,
		Compagnie:        orUnspecified(getString(rec, "companie", "compagnie")),
		Description:      orUnspecified(getString(rec, "description")),
		Secteur:          splitMulti(rec["secteur"]),
		Fonction:         orUnspecified(getString(rec, "fonction")),
		NiveauEtudes:     orUnspecified(getString(rec, "niveau_etudes")),
		NiveauExperience: orUnspecified(getString(rec, "niveau_experience")),
		Contrat:          orUnspecified(getString(rec, "contrat")),
		Region:           orUnspecified(getString(rec, "region")),
		Salaire:          orUnspecified(getString(rec, "salaire")),
		Skills:           FlattenSkills(rec),
	}
}

// FlattenSkills collapses every skill shape seen in the corpus into one
// ordered {nom, type_skill} list: a flat "skills" list (objects or bare
// strings), then legacy "hard_skills" and "soft_skills" groups, each of
// which may be a list or a comma-joined string. Hard skills come first.
func FlattenSkills(rec model.RawOffer) []model.Skill {
	var skills []model.Skill

	if list, ok := rec["skills"].([]any); ok {
		for _, e := range list {
			switch entry := e.(type) {
			case string:
				if s := strings.TrimSpace(entry); s != "" {
					skills = append(skills, model.Skill{Nom: s, TypeSkill: "hard"})
				}
			case map[string]any:
				nom, _ := entry["nom"].(string)
				typeSkill, _ := entry["type_skill"].(string)
				if nom = strings.TrimSpace(nom); nom == "" {
					continue
				}
				if typeSkill != "hard" && typeSkill != "soft" {
					typeSkill = "hard"
				}
				skills = append(skills, model.Skill{Nom: nom, TypeSkill: typeSkill})
			}
		}
	}

	for _, group := range []struct {
		key       string
		typeSkill string
	}{{"hard_skills", "hard"}, {"soft_skills", "soft"}} {
		for _, nom := range splitMulti(rec[group.key]) {
			skills = append(skills, model.Skill{Nom: nom, TypeSkill: group.typeSkill})
		}
	}
	return skills
}

// splitMulti turns a possibly comma-joined value into a list of trimmed,
// non-empty strings.
func splitMulti(v any) []string {
	var parts []string
	switch t := v.(type) {
	case string:
		parts = commaRe.Split(t, -1)
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok {
				parts = append(parts, commaRe.Split(s, -1)...)
			}
		}
	case []string:
		for _, s := range t {
			parts = append(parts, commaRe.Split(s, -1)...)
		}
	}
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getString(rec model.RawOffer, keys ...string) string {
	for _, k := range keys {
		if s, ok := rec[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

func orUnspecified(s string) string {
	if s == "" {
		return Unspecified
	}
	return s
}
