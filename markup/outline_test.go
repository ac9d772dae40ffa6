package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompileOutline(t *testing.T) {
	tests := []struct {
		name    string
		outline Outline
		want    string
	}{
		{
			name:    "no sections",
			outline: Outline{Title: "Només títol"},
			want:    "",
		},
		{
			name: "title and points",
			outline: Outline{
				Title:    "T",
				Sections: []Section{{Heading: "H", Points: []string{"a", "b"}}},
			},
			want: "<h1>T</h1><h2>H</h2><ul><li>a</li><li>b</li></ul>",
		},
		{
			name: "section without points",
			outline: Outline{
				Sections: []Section{{Heading: "Introducció"}, {Heading: "Conclusions", Points: []string{}}},
			},
			want: "<h2>Introducció</h2><h2>Conclusions</h2>",
		},
		{
			name: "escapes markup characters only",
			outline: Outline{
				Sections: []Section{{Heading: "R&D <pla>", Points: []string{`"cita" d'ell`}}},
			},
			want: `<h2>R&amp;D &lt;pla&gt;</h2><ul><li>"cita" d'ell</li></ul>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompileOutline(tt.outline))
		})
	}
}

func TestCompileOutlineOrder(t *testing.T) {
	out := CompileOutline(Outline{
		Title:    "T",
		Sections: []Section{{Heading: "H", Points: []string{"a", "b"}}},
	})

	h1 := strings.Index(out, "<h1>T</h1>")
	h2 := strings.Index(out, "<h2>H</h2>")
	a := strings.Index(out, "<li>a</li>")
	b := strings.Index(out, "<li>b</li>")
	assert.True(t, h1 >= 0 && h1 < h2 && h2 < a && a < b, out)
	assert.Equal(t, 1, strings.Count(out, "<ul>"))
}
