package pipeline

import (
	"sort"

	"github.com/hamzaelk/offerpipe/internal/model"
)

// SkillCount is one entry of a skill frequency ranking.
type SkillCount struct {
	Nom   string
	Count int
}

// Summary aggregates distribution statistics over a set of profiles,
// logged at the end of a run.
type Summary struct {
	Profiles     int
	DataProfiles int
	Contracts    map[string]int
	Experience   map[string]int
	TopSkills    []SkillCount
}

// Summarize computes contract and experience distributions plus the topN
// most frequent skills. Unset fields are bucketed as "Unspecified".
func Summarize(profiles []model.Profile, topN int) Summary {
	s := Summary{
		Profiles:   len(profiles),
		Contracts:  map[string]int{},
		Experience: map[string]int{},
	}

	skillCounts := map[string]int{}
	for _, p := range profiles {
		if p.IsDataProfile {
			s.DataProfiles++
		}
		s.Contracts[bucket(p.Contrat)]++
		s.Experience[bucket(p.NiveauExperience)]++
		for _, sk := range p.Skills {
			if sk.Nom != "" {
				skillCounts[sk.Nom]++
			}
		}
	}

	ranked := make([]SkillCount, 0, len(skillCounts))
	for nom, n := range skillCounts {
		ranked = append(ranked, SkillCount{Nom: nom, Count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Nom < ranked[j].Nom
	})
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	s.TopSkills = ranked
	return s
}

func bucket(p *string) string {
	if v := model.Deref(p); v != "" {
		return v
	}
	return "Unspecified"
}
