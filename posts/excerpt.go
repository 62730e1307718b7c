package posts

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const (
	excerptLimit    = 500
	defaultReadTime = 5
	wordsPerMinute  = 200
)

// markdown renderer configured with Goldmark and the GFM extension set
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
	),
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// plainText renders markdown content to HTML, strips the tags, and collapses
// whitespace.
func plainText(content string) string {
	rendered := content
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err == nil {
		rendered = buf.String()
	}

	// Block elements are newline-separated in the rendered HTML, so dropping
	// the tags outright does not glue words together.
	text := htmlTagPattern.ReplaceAllString(rendered, "")
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

// deriveExcerpt produces a plain-text excerpt from markdown content, capped
// at the column limit.
func deriveExcerpt(content string) string {
	text := plainText(content)

	runes := []rune(text)
	if len(runes) > excerptLimit {
		text = strings.TrimSpace(string(runes[:excerptLimit-3])) + "..."
	}
	return text
}

// estimateReadTime derives minutes from the word count of the plain text at
// 200 words per minute, never below one minute. Empty content keeps the
// stored default.
func estimateReadTime(content string) int {
	words := len(strings.Fields(plainText(content)))
	if words == 0 {
		return defaultReadTime
	}

	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
