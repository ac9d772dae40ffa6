package markup

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var converter = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
)

var (
	htmlStart = regexp.MustCompile(`(?i)^<(p|h[1-6]|ul|ol|li|blockquote|div|img|pre|code|figure|iframe|mark|strong|em|a)[\s>/]`)
	fenceOpen = regexp.MustCompile("^```[a-zA-Z0-9_-]*\\s*\n")
	fenceEnd  = regexp.MustCompile("\n?```\\s*$")
)

// FromMarkdown renders markdown into editor markup.
func FromMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := converter.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return Normalize(buf.String()), nil
}

// FromModelOutput turns generated text into markup the editor accepts.
// HTML output is normalised as is; anything else is read as markdown.
func FromModelOutput(out string) (string, error) {
	text := strings.TrimSpace(StripCodeFence(out))
	if text == "" {
		return "", nil
	}
	if htmlStart.MatchString(text) {
		return Normalize(text), nil
	}
	return FromMarkdown(text)
}

// StripCodeFence removes a single fenced block wrapped around the whole text,
// which chat models like to add around HTML and JSON answers.
func StripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	loc := fenceOpen.FindStringIndex(t)
	if loc == nil {
		return s
	}
	t = t[loc[1]:]
	return fenceEnd.ReplaceAllString(t, "")
}
