package htmlutils

import (
	"regexp"
	"strings"
)

// tagRegex matches anything between angle brackets. Best effort: an unclosed
// "<" is left in place rather than swallowing the rest of the text.
var tagRegex = regexp.MustCompile(`<[^>]*>`)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// StripTags removes every HTML tag, keeping the text between them.
func StripTags(text string) string {
	return tagRegex.ReplaceAllString(text, "")
}

// CollapseWhitespace turns line breaks into spaces, squeezes runs of
// whitespace to a single space and trims both ends.
func CollapseWhitespace(text string) string {
	text = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text)
	text = whitespaceRegex.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// PlainText strips tags and collapses whitespace.
func PlainText(text string) string {
	return CollapseWhitespace(StripTags(text))
}
