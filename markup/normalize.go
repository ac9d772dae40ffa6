package markup

import (
	"regexp"
	"strings"
)

// The editor only knows headings up to level 3, so deeper ones are folded
// into h3 before the markup reaches the document.
var (
	deepHeading    = regexp.MustCompile(`(?is)<h[4-6]([^>]*)>(.*?)</h[4-6]>`)
	scriptBlock    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlock     = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	commentBlock   = regexp.MustCompile(`(?s)<!--.*?-->`)
	newlineBetween = regexp.MustCompile(`>\s*\n\s*<`)
)

// Normalize rewrites HTML into the editor dialect.
func Normalize(html string) string {
	html = scriptBlock.ReplaceAllString(html, "")
	html = styleBlock.ReplaceAllString(html, "")
	html = commentBlock.ReplaceAllString(html, "")
	html = deepHeading.ReplaceAllStringFunc(html, func(block string) string {
		parts := deepHeading.FindStringSubmatch(block)
		if len(parts) != 3 {
			return block
		}
		return "<h3" + parts[1] + ">" + strings.TrimSpace(parts[2]) + "</h3>"
	})
	html = newlineBetween.ReplaceAllString(html, "><")
	return strings.TrimSpace(html)
}
