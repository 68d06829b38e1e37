package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateLayout is the canonical calendar-date form used across the whole
// pipeline (enrichment and transform paths alike).
const dateLayout = "2006-01-02"

// absoluteLayouts is tried in order; the first successful parse wins.
// Day-first layouts come before the US month-first one on purpose.
var absoluteLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"01/02/2006",
}

// months maps French and English month names (and their three-letter
// prefixes) to month numbers, for partial dates like "1 May-12:53" or
// "15 janvier" that strptime-style layouts cannot cover.
var months = map[string]time.Month{}

func init() {
	names := map[string]time.Month{
		"janvier": time.January, "février": time.February, "mars": time.March,
		"avril": time.April, "mai": time.May, "juin": time.June,
		"juillet": time.July, "août": time.August, "septembre": time.September,
		"octobre": time.October, "novembre": time.November, "décembre": time.December,
		"january": time.January, "february": time.February, "march": time.March,
		"april": time.April, "may": time.May, "june": time.June,
		"july": time.July, "august": time.August, "september": time.September,
		"october": time.October, "november": time.November, "december": time.December,
	}
	for name, m := range names {
		months[name] = m
		months[Fold(name)] = m
		if r := []rune(name); len(r) > 3 {
			months[string(r[:3])] = m
			months[Fold(string(r[:3]))] = m
		}
	}
}

var (
	relativeRe = regexp.MustCompile(`(?:il y a\s+)?(\d+)\s+(jours?|days?|semaines?|weeks?|mois|months?|heures?|hours?)(?:\s+ago)?`)
	partialRe  = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-zÀ-ÿ]+)(?:-(\d{1,2}:\d{2}))?`)
)

// Date converts a heterogeneous date string to canonical YYYY-MM-DD form,
// evaluating relative phrases against the current clock. Returns nil when
// the text cannot be interpreted; callers log that as a warning, never an
// error.
func Date(s string) *string {
	return DateAt(time.Now(), s)
}

// DateAt is Date with an explicit reference clock, for deterministic tests.
func DateAt(now time.Time, s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	key := Fold(s)

	// Relative keywords first.
	if strings.Contains(key, "aujourd") || strings.Contains(key, "today") {
		return canonical(now)
	}
	if strings.Contains(key, "hier") || strings.Contains(key, "yesterday") {
		return canonical(now.AddDate(0, 0, -1))
	}

	// "3 days ago", "il y a 2 semaines", "5 hours ago", ...
	if m := relativeRe.FindStringSubmatch(key); m != nil && looksRelative(key) {
		n, _ := strconv.Atoi(m[1])
		switch {
		case strings.HasPrefix(m[2], "jour"), strings.HasPrefix(m[2], "day"):
			return canonical(now.AddDate(0, 0, -n))
		case strings.HasPrefix(m[2], "semaine"), strings.HasPrefix(m[2], "week"):
			return canonical(now.AddDate(0, 0, -7*n))
		case strings.HasPrefix(m[2], "mois"), strings.HasPrefix(m[2], "month"):
			// Months are approximated as 30 days.
			return canonical(now.AddDate(0, 0, -30*n))
		case strings.HasPrefix(m[2], "heure"), strings.HasPrefix(m[2], "hour"):
			return canonical(now.Add(-time.Duration(n) * time.Hour))
		}
	}

	// Absolute formats, first match wins.
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			// Layouts without a year token parse to a sentinel year;
			// substitute the current one.
			if t.Year() == 0 || t.Year() == 1900 {
				t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			}
			return canonical(t)
		}
	}

	// Partial "DD Month" (optionally "-HH:MM"), year assumed current.
	if m := partialRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		if month, ok := months[Fold(m[2])]; ok && day >= 1 && day <= 31 {
			t := time.Date(now.Year(), month, day, 0, 0, 0, 0, time.UTC)
			if t.Day() == day { // reject overflow like "31 Feb"
				return canonical(t)
			}
		}
	}

	return nil
}

// looksRelative guards the relative regex: a bare numeric date like
// "12 2024" must not be read as "12 months".
func looksRelative(key string) bool {
	return strings.Contains(key, "ago") || strings.Contains(key, "il y a")
}

func canonical(t time.Time) *string {
	s := t.Format(dateLayout)
	return &s
}
