package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromModelOutput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "markdown article",
			in:   "# Teletreball\n\nUna frase.\n\n- u\n- dos\n",
			want: "<h1>Teletreball</h1><p>Una frase.</p><ul><li>u</li><li>dos</li></ul>",
		},
		{
			name: "html kept",
			in:   "<h2>Hola</h2><p>món</p>",
			want: "<h2>Hola</h2><p>món</p>",
		},
		{
			name: "fenced html",
			in:   "```html\n<p>dins</p>\n```",
			want: "<p>dins</p>",
		},
		{
			name: "deep headings clamped",
			in:   "<h5>Petit</h5><p>x</p>",
			want: "<h3>Petit</h3><p>x</p>",
		},
		{
			name: "empty",
			in:   "   ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromModelOutput(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDropsScripts(t *testing.T) {
	got := Normalize("<p>a</p>\n<script>alert(1)</script>\n<style>p{}</style><p>b</p>")
	assert.Equal(t, "<p>a</p><p>b</p>", got)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, "sense tanques", StripCodeFence("sense tanques"))
}
