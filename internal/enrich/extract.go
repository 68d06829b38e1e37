package enrich

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// The LLM is asked for bare JSON but routinely wraps it in prose, code
// fences or emits trailing commas. Extraction is therefore layered:
// outermost bracket pair first, then trailing-comma repair, then a balanced
// brace scan that picks individual objects out of the noise.

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

var errNoJSON = errors.New("no parseable JSON in llm response")

// ExtractObject pulls one JSON object out of raw LLM text.
func ExtractObject(text string) (map[string]any, error) {
	start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		frag := stripControl(text[start : end+1])
		var m map[string]any
		if err := json.Unmarshal([]byte(frag), &m); err == nil {
			return m, nil
		}
		repaired := trailingCommaRe.ReplaceAllString(frag, "$1")
		if err := json.Unmarshal([]byte(repaired), &m); err == nil {
			return m, nil
		}
	}

	if objs := scanObjects(text); len(objs) > 0 {
		return objs[0], nil
	}
	return nil, errNoJSON
}

// ExtractArray pulls a JSON array of objects out of raw LLM text. When no
// well-formed array can be recovered, individually parseable objects found
// in the text are returned in order.
func ExtractArray(text string) ([]map[string]any, error) {
	start, end := strings.Index(text, "["), strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		frag := stripControl(text[start : end+1])
		if objs, ok := parseArray(frag); ok {
			return objs, nil
		}
		if objs, ok := parseArray(trailingCommaRe.ReplaceAllString(frag, "$1")); ok {
			return objs, nil
		}
	}

	if objs := scanObjects(text); len(objs) > 0 {
		return objs, nil
	}
	return nil, errNoJSON
}

func parseArray(frag string) ([]map[string]any, bool) {
	var raw []any
	if err := json.Unmarshal([]byte(frag), &raw); err != nil {
		return nil, false
	}
	objs := make([]map[string]any, 0, len(raw))
	for _, e := range raw {
		if m, ok := e.(map[string]any); ok {
			objs = append(objs, m)
		}
	}
	return objs, true
}

// scanObjects walks the text with a string-aware brace counter and parses
// every top-level {...} fragment it can. Fragments that still fail after
// trailing-comma repair are skipped.
func scanObjects(text string) []map[string]any {
	var (
		objs     []map[string]any
		depth    int
		start    = -1
		inString bool
		escaped  bool
	)
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			if depth == 0 {
				start = i
			}
			depth++
		case ch == '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				frag := stripControl(text[start : i+1])
				var m map[string]any
				if err := json.Unmarshal([]byte(frag), &m); err != nil {
					err = json.Unmarshal([]byte(trailingCommaRe.ReplaceAllString(frag, "$1")), &m)
					if err != nil {
						start = -1
						continue
					}
				}
				objs = append(objs, m)
				start = -1
			}
		}
	}
	return objs
}

// stripControl removes raw control characters the LLM occasionally leaks
// into string values. Escaped sequences ("\n" as two characters) survive.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || (r >= 0x7f && r <= 0x9f) {
			return ' '
		}
		return r
	}, s)
}
