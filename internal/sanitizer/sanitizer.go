// Package sanitizer strips scraper-site branding and comment chrome from
// question bodies.
package sanitizer

import (
	"regexp"
	"strings"
)

// DefaultAttributionNames are the visible texts of site user links that leak
// into scraped bodies.
var DefaultAttributionNames = []string{"Arjun", "asked", "Misbah Ghaya", "admin", "user"}

var (
	loginPromptPattern  = regexp.MustCompile(`(?i)Please \[log in\].*?to add a comment\.`)
	commentCountPattern = regexp.MustCompile(`(?i)\d+\s+Comments`)
	emptyArtifacts      = strings.NewReplacer("[]", "", "()", "")
)

// Sanitizer removes attribution anchors, login prompts, comment counts and
// empty bracket artifacts from HTML bodies.
type Sanitizer struct {
	attribution *regexp.Regexp
	names       []string
}

// New builds a sanitizer for the given attribution names. An empty list falls
// back to DefaultAttributionNames.
func New(names []string) *Sanitizer {
	if len(names) == 0 {
		names = DefaultAttributionNames
	}

	quoted := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			quoted = append(quoted, regexp.QuoteMeta(n))
		}
	}

	return &Sanitizer{
		attribution: regexp.MustCompile(`(?i)<a[^>]*>(` + strings.Join(quoted, "|") + `)</a>`),
		names:       append([]string(nil), names...),
	}
}

// AttributionNames returns the names whose anchors are removed.
func (s *Sanitizer) AttributionNames() []string {
	return append([]string(nil), s.names...)
}

// Clean returns the sanitized body. Removal can expose a new match (for
// example "[()]"), so passes repeat until the body stops changing; the result
// is a fixed point of Clean. Every pass only deletes, so the loop terminates.
func (s *Sanitizer) Clean(body string) string {
	for {
		next := s.pass(body)
		if next == body {
			return next
		}
		body = next
	}
}

func (s *Sanitizer) pass(body string) string {
	body = s.attribution.ReplaceAllString(body, "")
	body = loginPromptPattern.ReplaceAllString(body, "")
	body = commentCountPattern.ReplaceAllString(body, "")
	body = emptyArtifacts.Replace(body)
	return strings.TrimSpace(body)
}
