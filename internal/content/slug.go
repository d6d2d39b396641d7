// Package content holds the pure derivations applied to entities before they are written:
// slug generation and reading-time estimation.
package content

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Maximum slug lengths, in runes, per entity type.
const (
	PostSlugLength     = 100
	CategorySlugLength = 50
	TagSlugLength      = 30
)

// Slugify lower-cases text, drops every rune that is not a word rune, whitespace,
// a hyphen or in the Arabic/Persian block, joins the remaining words with single
// hyphens and truncates the result to maxLength runes. It may return "".
func Slugify(text string, maxLength int) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsSpace(r) || r == '-':
			pendingSep = true
		case isSlugRune(r):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		}
	}
	return truncate(b.String(), maxLength)
}

// NewSlug returns Slugify(text, maxLength), or a random identifier when nothing
// slug-worthy is left of the text.
func NewSlug(text string, maxLength int) string {
	if slug := Slugify(text, maxLength); slug != "" {
		return slug
	}
	return truncate(strings.ReplaceAll(uuid.NewString(), "-", "")[:12], maxLength)
}

func isSlugRune(r rune) bool {
	if r >= 0x0600 && r <= 0x06FF {
		return true
	}
	return unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r) || r == '_'
}

func truncate(slug string, maxLength int) string {
	if maxLength <= 0 {
		return slug
	}
	runes := []rune(slug)
	if len(runes) <= maxLength {
		return slug
	}
	return strings.TrimRight(string(runes[:maxLength]), "-")
}
