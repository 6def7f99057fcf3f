package htmlutil

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// tagPattern matches HTML tags including self-closing tags.
var tagPattern = regexp.MustCompile(`<[^>]*>`)

// multipleSpacesPattern matches runs of whitespace.
var multipleSpacesPattern = regexp.MustCompile(`\s{2,}`)

// StripTags removes all HTML tags from a string and normalizes whitespace.
// Block-level closing tags become spaces so words from adjacent paragraphs
// don't run together.
func StripTags(s string) string {
	if s == "" {
		return ""
	}

	blockTags := []string{"</p>", "</div>", "<br>", "<br/>", "<br />", "</li>", "</h1>", "</h2>", "</h3>", "</h4>", "</h5>", "</h6>"}
	result := s
	for _, tag := range blockTags {
		result = strings.ReplaceAll(result, tag, " ")
		result = strings.ReplaceAll(result, strings.ToUpper(tag), " ")
	}

	result = tagPattern.ReplaceAllString(result, "")
	result = html.UnescapeString(result)
	result = multipleSpacesPattern.ReplaceAllString(result, " ")

	return strings.TrimSpace(result)
}

// Truncate shortens a string to at most limit runes, appending an ellipsis
// when anything was cut. It tries to break on a word boundary.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)
	cut := string(runes[:limit])
	if idx := strings.LastIndex(cut, " "); idx > limit/2 {
		cut = cut[:idx]
	}

	return strings.TrimSpace(cut) + "…"
}
