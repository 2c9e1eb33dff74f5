package moderation

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer normalizes untrusted text before it reaches the domain.
// It never rejects input: an empty result is left to validation.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize strips markup and control characters and trims surrounding spaces.
// Entities are decoded first so that escaped markup is stripped as well.
func (s *Sanitizer) Sanitize(input string) string {
	stripped := s.policy.Sanitize(html.UnescapeString(input))
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, html.UnescapeString(stripped))
	return strings.TrimSpace(cleaned)
}
