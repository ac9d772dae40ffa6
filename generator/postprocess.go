package generator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"blog_ai_editor/markup"
	"blog_ai_editor/transform"
)

var (
	listMarker = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)
	tagSplit   = regexp.MustCompile(`[,;\n]+`)
	jsonObject = regexp.MustCompile(`(?s)\{.*\}`)
)

const quoteChars = "\"'«»“”‘’"

// PostProcess turns raw model output into the result shape of the action:
// a string, a []string or a markup.Outline.
func PostProcess(action transform.ActionID, raw string) (any, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, ErrEmptyOutput
	}

	switch action {
	case transform.GenerateTitle:
		titles := extractTitles(text)
		if len(titles) == 0 {
			return nil, ErrEmptyOutput
		}
		return titles, nil

	case transform.SuggestTags:
		tags := extractTags(text)
		if len(tags) == 0 {
			return nil, ErrEmptyOutput
		}
		return tags, nil

	case transform.GenerateOutline:
		return extractOutline(text)

	default:
		out := strings.TrimSpace(markup.StripCodeFence(text))
		if out == "" {
			return nil, ErrEmptyOutput
		}
		return out, nil
	}
}

func extractTitles(text string) []string {
	var titles []string
	for _, line := range strings.Split(markup.StripCodeFence(text), "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), "#")
		line = listMarker.ReplaceAllString(line, "")
		line = strings.Trim(strings.TrimSpace(line), quoteChars+"*")
		if line == "" {
			continue
		}
		titles = append(titles, line)
		if len(titles) == MaxTitles {
			break
		}
	}
	return titles
}

func extractTags(text string) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, part := range tagSplit.Split(markup.StripCodeFence(text), -1) {
		tag := listMarker.ReplaceAllString(strings.TrimSpace(part), "")
		tag = strings.ToLower(strings.Trim(strings.TrimSpace(tag), quoteChars+"#"))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
		if len(tags) == MaxTags {
			break
		}
	}
	return tags
}

// extractOutline reads the JSON outline, tolerating a code fence or prose
// around the object.
func extractOutline(text string) (markup.Outline, error) {
	body := strings.TrimSpace(markup.StripCodeFence(text))
	if !strings.HasPrefix(body, "{") {
		body = jsonObject.FindString(body)
	}
	var o markup.Outline
	if err := json.Unmarshal([]byte(body), &o); err != nil {
		return markup.Outline{}, fmt.Errorf("%w: outline is not valid JSON: %v", ErrEmptyOutput, err)
	}
	o.Title = strings.TrimSpace(o.Title)
	sections := o.Sections[:0]
	for _, s := range o.Sections {
		s.Heading = strings.TrimSpace(s.Heading)
		if s.Heading == "" {
			continue
		}
		sections = append(sections, s)
	}
	o.Sections = sections
	if len(o.Sections) == 0 {
		return markup.Outline{}, fmt.Errorf("%w: outline has no sections", ErrEmptyOutput)
	}
	return o, nil
}
