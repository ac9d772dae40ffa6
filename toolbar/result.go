package toolbar

import (
	"encoding/json"
	"fmt"
	"strings"

	"blog_ai_editor/markup"
	"blog_ai_editor/transform"
)

type rawSection struct {
	Heading *string  `json:"heading"`
	Points  []string `json:"points"`
}

type rawOutline struct {
	Title    *string       `json:"title"`
	Sections *[]rawSection `json:"sections"`
}

// interpret checks a raw result against the shape the action produces.
// A single string is accepted where a list is expected.
func interpret(action transform.ActionID, raw json.RawMessage) (transform.Result, error) {
	switch transform.ExpectedKind(action) {
	case transform.KindList:
		list, err := decodeList(raw)
		if err != nil {
			return transform.Result{}, err
		}
		return transform.ListResult(list), nil

	case transform.KindOutline:
		o, err := decodeOutline(raw)
		if err != nil {
			return transform.Result{}, err
		}
		return transform.OutlineResult(o), nil

	default:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return transform.Result{}, malformed("expected text: %v", err)
		}
		if strings.TrimSpace(s) == "" {
			return transform.Result{}, malformed("empty text")
		}
		return transform.TextResult(strings.TrimSpace(s)), nil
	}
}

func decodeList(raw json.RawMessage) ([]string, error) {
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		var single string
		if json.Unmarshal(raw, &single) != nil {
			return nil, malformed("expected a list of strings: %v", err)
		}
		items = []string{single}
	}
	out := items[:0]
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return nil, malformed("empty list")
	}
	return out, nil
}

func decodeOutline(raw json.RawMessage) (markup.Outline, error) {
	var ro rawOutline
	if err := json.Unmarshal(raw, &ro); err != nil {
		return markup.Outline{}, malformed("expected an outline: %v", err)
	}
	if ro.Sections == nil || len(*ro.Sections) == 0 {
		return markup.Outline{}, malformed("outline without sections")
	}
	var o markup.Outline
	if ro.Title != nil {
		o.Title = strings.TrimSpace(*ro.Title)
	}
	for i, s := range *ro.Sections {
		if s.Heading == nil || strings.TrimSpace(*s.Heading) == "" {
			return markup.Outline{}, malformed("section %d has no heading", i)
		}
		var points []string
		for _, p := range s.Points {
			if p = strings.TrimSpace(p); p != "" {
				points = append(points, p)
			}
		}
		o.Sections = append(o.Sections, markup.Section{
			Heading: strings.TrimSpace(*s.Heading),
			Points:  points,
		})
	}
	return o, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", transform.ErrMalformedResult, fmt.Sprintf(format, args...))
}
