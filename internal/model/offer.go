package model

// RawOffer is one scraped record as it arrives from a source site. Each
// scraper emits its own field set, so the shape is only known structurally
// (presence of "description" vs "fonction", nested vs flat skills).
type RawOffer map[string]any

// Skill is one competency attached to an offer.
type Skill struct {
	Nom       string `json:"nom"`
	TypeSkill string `json:"type_skill"` // "hard" or "soft"
}

// Offer is the canonical, source-independent shape of a job listing.
// Optional fields are pointers so "unknown" serializes as null rather than
// being absent; JobURL is the identity key and is never rewritten after
// normalization.
type Offer struct {
	JobURL           string   `json:"job_url"`
	Titre            *string  `json:"titre"`
	PublicationDate  *string  `json:"publication_date"` // YYYY-MM-DD
	Companie         *string  `json:"companie"`
	Description      *string  `json:"description"`
	Secteur          *string  `json:"secteur"`
	Fonction         *string  `json:"fonction"`
	NiveauEtudes     *string  `json:"niveau_etudes"`
	NiveauExperience *string  `json:"niveau_experience"`
	Contrat          *string  `json:"contrat"`
	Via              *string  `json:"via"` // originating scraper
	Competences      *string  `json:"competences"`
	Region           *string  `json:"region"`
	Salaire          *string  `json:"salaire"`
	Extra            *string  `json:"extra"`
	Skills           []Skill  `json:"skills"`
}

// Profile is an offer after LLM enrichment. Skills is never nil (empty list
// allowed) and JobURL is carried over byte-for-byte from the source offer.
type Profile struct {
	JobURL           string  `json:"job_url"`
	DatePublication  *string `json:"date_publication"`
	Source           *string `json:"source"`
	Contrat          *string `json:"contrat"`
	Titre            *string `json:"titre"`
	Compagnie        *string `json:"compagnie"`
	Secteur          *string `json:"secteur"`
	NiveauEtudes     *string `json:"niveau_etudes"`
	NiveauExperience *string `json:"niveau_experience"`
	Description      *string `json:"description"`
	Skills           []Skill `json:"skills"`
	IsDataProfile    bool    `json:"is_data_profile"`
}

// Str returns a pointer to s, or nil when s is empty. Used when building
// offers from raw records where "" and "missing" mean the same thing.
func Str(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the string behind p, or "" when p is nil.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
