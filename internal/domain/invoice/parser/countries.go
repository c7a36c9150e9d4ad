package parser

import (
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// CountrySet canonicalizes overseas usage locations against a configured
// country list, tolerating small OCR misreads.
type CountrySet struct {
	known []string
	// Whole-word patterns per country. Substring matching is not enough:
	// "USA" sits inside "Usage", which appears on every overseas data line.
	patterns []*regexp.Regexp
}

func NewCountrySet(known []string) *CountrySet {
	set := &CountrySet{}
	for _, k := range known {
		if k = strings.TrimSpace(k); k == "" {
			continue
		}
		set.known = append(set.known, k)
		set.patterns = append(set.patterns,
			regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(k)+`\b`))
	}
	return set
}

// Canonical maps a raw location cell to its canonical country name when it
// is an exact (case-insensitive) or near (edit distance 1) match. Anything
// else is kept as-is so unexpected locations still surface in the output.
func (c *CountrySet) Canonical(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	lower := strings.ToLower(trimmed)
	for _, k := range c.known {
		if strings.ToLower(k) == lower {
			return k
		}
	}
	for _, k := range c.known {
		if fuzzy.LevenshteinDistance(lower, strings.ToLower(k)) <= 1 {
			return k
		}
	}
	return trimmed
}

// Matches returns every known country mentioned as a whole word in the line.
func (c *CountrySet) Matches(line string) []string {
	var out []string
	for i, pattern := range c.patterns {
		if pattern.MatchString(line) {
			out = append(out, c.known[i])
		}
	}
	return out
}
