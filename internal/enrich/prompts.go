package enrich

import (
	_ "embed"
	"strings"
	"text/template"
)

//go:embed prompts/enrich_offer.md
var enrichOfferPromptRaw string

//go:embed prompts/enrich_batch.md
var enrichBatchPromptRaw string

// Prompt templates, parsed once at package init and reused on every call.
var (
	enrichOfferTemplate = template.Must(template.New("enrich_offer").Parse(enrichOfferPromptRaw))
	enrichBatchTemplate = template.Must(template.New("enrich_batch").Parse(enrichBatchPromptRaw))
)

// promptData is the template payload: the offer block(s) and, for batch
// prompts, how many objects the model must return.
type promptData struct {
	Count   int
	Context string
}

func renderPrompt(tmpl *template.Template, data promptData) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
