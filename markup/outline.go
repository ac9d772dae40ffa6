package markup

import "strings"

// Outline is an article skeleton as returned by the outline action.
type Outline struct {
	Title    string    `json:"title,omitempty"`
	Sections []Section `json:"sections"`
}

// Section is one outline heading with its bullet points.
type Section struct {
	Heading string   `json:"heading"`
	Points  []string `json:"points,omitempty"`
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// CompileOutline renders an outline as editor markup: an optional h1 title,
// then one h2 per section followed by a bullet list of its points.
// An outline without sections compiles to the empty string.
func CompileOutline(o Outline) string {
	if len(o.Sections) == 0 {
		return ""
	}
	var b strings.Builder
	if o.Title != "" {
		writeElement(&b, "h1", o.Title)
	}
	for _, s := range o.Sections {
		writeElement(&b, "h2", s.Heading)
		if len(s.Points) == 0 {
			continue
		}
		b.WriteString("<ul>")
		for _, p := range s.Points {
			writeElement(&b, "li", p)
		}
		b.WriteString("</ul>")
	}
	return b.String()
}

func writeElement(b *strings.Builder, tag, text string) {
	b.WriteString("<" + tag + ">")
	b.WriteString(textEscaper.Replace(text))
	b.WriteString("</" + tag + ">")
}
