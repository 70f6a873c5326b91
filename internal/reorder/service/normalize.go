package service

import (
	"regexp"
	"strings"
)

// measure/packaging tokens that carry no product identity
var unitTokens = map[string]struct{}{
	"cm": {}, "mm": {}, "ml": {}, "lt": {}, "pz": {}, "conf": {},
	"cf": {}, "kg": {}, "gr": {}, "ø": {}, "diam": {}, "x": {},
}

var rePunct = regexp.MustCompile(`[[:punct:]]`)

// Normalize canonicalizes free text for comparison: lowercase, newlines to
// spaces, punctuation deleted, unit tokens dropped, whitespace collapsed.
// Idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "\n", " ")
	s = rePunct.ReplaceAllString(s, "")
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if _, unit := unitTokens[f]; !unit {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}
