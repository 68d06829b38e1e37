// Package dedup holds the two deduplication strategies of the pipeline:
// identity by job_url while offers still carry a trustworthy URL, and a
// content signature after enrichment, where the LLM may have altered or
// dropped the URL.
package dedup

import (
	"strings"

	"github.com/hamzaelk/offerpipe/internal/model"
)

// ContainsURL reports whether offers already holds a record with the given
// job_url. Linear scan: input sets are bounded by one scraping run, so an
// index would not pay for itself here.
func ContainsURL(offers []model.Offer, url string) bool {
	for _, o := range offers {
		if o.JobURL == url {
			return true
		}
	}
	return false
}

// Signature derives the post-enrichment identity of a profile from
// (titre, compagnie, description prefix). job_url is deliberately not part
// of it.
func Signature(p model.Profile) string {
	desc := model.Deref(p.Description)
	if r := []rune(desc); len(r) > 100 {
		desc = string(r[:100])
	}
	return strings.Join([]string{model.Deref(p.Titre), model.Deref(p.Compagnie), desc}, "\x1f")
}

// SignatureSet tracks signatures already encountered during one run.
type SignatureSet map[string]struct{}

// Add records sig and reports whether it was new.
func (s SignatureSet) Add(sig string) bool {
	if _, ok := s[sig]; ok {
		return false
	}
	s[sig] = struct{}{}
	return true
}
