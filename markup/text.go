package markup

import (
	"html"
	"regexp"
	"strings"
)

var (
	allTags    = regexp.MustCompile(`<[^>]+>`)
	multiSpace = regexp.MustCompile(`[ \t]+`)
	blockClose = regexp.MustCompile(`(?i)</(p|h[1-6]|li|blockquote|pre|div)>|<br\s*/?>`)
)

// PlainText strips tags and decodes entities. Block ends become newlines.
func PlainText(markup string) string {
	s := scriptBlock.ReplaceAllString(markup, "")
	s = styleBlock.ReplaceAllString(s, "")
	s = commentBlock.ReplaceAllString(s, "")
	s = blockClose.ReplaceAllString(s, "\n")
	s = allTags.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = multiSpace.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// HasContent reports whether markup still carries text once its tags are stripped.
func HasContent(markup string) bool {
	return PlainText(markup) != ""
}
