package posts

import (
	"strings"
	"unicode"
)

// generateSlug derives a URL-safe identifier from a post title: lowercase,
// strip everything outside [a-z0-9\s-], turn whitespace into hyphens,
// collapse hyphen runs, trim the edges.
func generateSlug(title string) string {
	slug := strings.ToLower(title)

	slug = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		if unicode.IsSpace(r) {
			return '-'
		}
		return -1
	}, slug)

	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}

	return strings.Trim(slug, "-")
}
