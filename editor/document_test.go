package editor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDoc(t *testing.T, markup string) *Document {
	t.Helper()
	doc, err := NewDocument(markup, nil)
	require.NoError(t, err)
	return doc
}

func TestNewDocumentRoundTrip(t *testing.T) {
	markup := `<h1>Títol</h1><p>Hola <strong>món</strong> i <a href="https://example.cat">enllaç</a></p><ul><li>u</li></ul>`
	doc := newDoc(t, markup)

	assert.Equal(t, markup, doc.Markup())
	assert.Equal(t, "TítolHola món i enllaçu", doc.PlainText())
	assert.Equal(t, 23, doc.Len())
}

func TestNewDocumentDropsWhitespaceBetweenBlocks(t *testing.T) {
	doc := newDoc(t, "<p>a</p>\n\n<p>b</p>\n")
	assert.Equal(t, "<p>a</p><p>b</p>", doc.Markup())
	assert.Equal(t, "ab", doc.PlainText())
}

func TestSelectionEmptinessInvariant(t *testing.T) {
	doc := newDoc(t, "<h2>Cita</h2><p>prèvia <em>digital</em></p>")
	text := []rune(doc.PlainText())

	for from := 0; from <= len(text); from++ {
		for to := from; to <= len(text); to++ {
			require.NoError(t, doc.SetSelection(from, to))
			sel := doc.Selection()
			if from == to {
				assert.Equal(t, "", sel.Text)
				assert.True(t, sel.Empty())
				continue
			}
			assert.NotEmpty(t, sel.Text)
			assert.Equal(t, string(text[from:to]), strings.ReplaceAll(sel.Text, "\n", ""))
		}
	}
}

func TestSelectionTextSeparatesBlocks(t *testing.T) {
	doc := newDoc(t, "<p>Primer paràgraf.</p><p>Segon <em>pas</em>.</p><ul><li>u</li><li>v</li></ul>")

	require.NoError(t, doc.SetSelection(0, 1000))
	assert.Equal(t, "Primer paràgraf.\nSegon pas.\nu\nv", doc.Selection().Text)
	assert.Equal(t, "Primer paràgraf.Segon pas.uv", doc.PlainText())

	require.NoError(t, doc.SetSelection(7, 21))
	assert.Equal(t, "paràgraf.\nSegon", doc.Selection().Text)
	assert.Equal(t, "paràgraf.\nSegon", doc.TextBetween(21, 7))

	require.NoError(t, doc.SetSelection(16, 21))
	assert.Equal(t, "Segon", doc.Selection().Text)
}

func TestSetSelectionClampsAndOrders(t *testing.T) {
	doc := newDoc(t, "<p>abcdef</p>")

	require.NoError(t, doc.SetSelection(5, 2))
	assert.Equal(t, Selection{From: 2, To: 5, Text: "cde"}, doc.Selection())

	require.NoError(t, doc.SetSelection(-3, 1000))
	assert.Equal(t, Selection{From: 0, To: 6, Text: "abcdef"}, doc.Selection())
}

func TestReplaceSelection(t *testing.T) {
	tests := []struct {
		name     string
		markup   string
		from, to int
		text     string
		want     string
		cursor   int
	}{
		{
			name:   "inside a paragraph",
			markup: "<p>Hola món</p>",
			from:   5, to: 8,
			text:   "gent",
			want:   "<p>Hola gent</p>",
			cursor: 9,
		},
		{
			name:   "across paragraphs joins them",
			markup: "<p>ab</p><p>cd</p>",
			from:   1, to: 3,
			text:   "X",
			want:   "<p>aXd</p>",
			cursor: 2,
		},
		{
			name:   "whole first paragraph",
			markup: "<p>ab</p><p>cd</p>",
			from:   0, to: 2,
			text:   "X",
			want:   "<p>X</p><p>cd</p>",
			cursor: 1,
		},
		{
			name:   "selection starting on a block boundary",
			markup: "<p>ab</p><p>cd</p>",
			from:   2, to: 4,
			text:   "X",
			want:   "<p>ab</p><p>X</p>",
			cursor: 3,
		},
		{
			name:   "keeps surrounding marks",
			markup: "<p>un <strong>text molt</strong> llarg</p>",
			from:   3, to: 7,
			text:   "escrit",
			want:   "<p>un <strong>escrit molt</strong> llarg</p>",
			cursor: 9,
		},
		{
			name:   "text is not parsed as markup",
			markup: "<p>a</p>",
			from:   0, to: 1,
			text:   "<b>x</b>",
			want:   "<p>&lt;b&gt;x&lt;/b&gt;</p>",
			cursor: 8,
		},
		{
			name:   "empty document",
			markup: "",
			text:   "hola",
			want:   "<p>hola</p>",
			cursor: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newDoc(t, tt.markup)
			require.NoError(t, doc.SetSelection(tt.from, tt.to))

			require.NoError(t, doc.ReplaceSelection(tt.text))

			assert.Equal(t, tt.want, doc.Markup())
			assert.Equal(t, Selection{From: tt.cursor, To: tt.cursor}, doc.Selection())
		})
	}
}

func TestReplaceSelectionFallsBackToInsert(t *testing.T) {
	const markup = "<h2>Tràmits</h2><p>Hola <em>món</em> digital</p>"
	n := newDoc(t, markup).Len()

	for pos := 0; pos <= n; pos++ {
		replaced := newDoc(t, markup)
		inserted := newDoc(t, markup)
		require.NoError(t, replaced.SetSelection(pos, pos))
		require.NoError(t, inserted.SetSelection(pos, pos))

		require.NoError(t, replaced.ReplaceSelection("nou"))
		require.NoError(t, inserted.InsertAtCursor("nou"))

		assert.Equal(t, inserted.Markup(), replaced.Markup(), "cursor at %d", pos)
		assert.Equal(t, inserted.Selection(), replaced.Selection(), "cursor at %d", pos)
	}
}

func TestInsertAtCursor(t *testing.T) {
	tests := []struct {
		name     string
		markup   string
		from, to int
		fragment string
		want     string
		cursor   int
	}{
		{
			name:   "blocks split the paragraph",
			markup: "<p>abcd</p>",
			from:   2, to: 2,
			fragment: "<h2>H</h2>",
			want:     "<p>ab</p><h2>H</h2><p>cd</p>",
			cursor:   3,
		},
		{
			name:   "blocks at the end",
			markup: "<p>abcd</p>",
			from:   4, to: 4,
			fragment: "<h2>H</h2><ul><li>a</li></ul>",
			want:     "<p>abcd</p><h2>H</h2><ul><li>a</li></ul>",
			cursor:   6,
		},
		{
			name:     "blocks at the start",
			markup:   "<p>abcd</p>",
			fragment: "<h1>T</h1>",
			want:     "<h1>T</h1><p>abcd</p>",
			cursor:   1,
		},
		{
			name:     "blocks into an empty paragraph",
			markup:   "<p></p>",
			fragment: "<h1>T</h1><h2>H</h2>",
			want:     "<h1>T</h1><h2>H</h2>",
			cursor:   2,
		},
		{
			name:   "inline markup replaces the selection",
			markup: "<p>hola món</p>",
			from:   5, to: 8,
			fragment: "<strong>gent</strong>",
			want:     "<p>hola <strong>gent</strong></p>",
			cursor:   9,
		},
		{
			name:   "split keeps the enclosing marks",
			markup: "<p><em>abcd</em></p>",
			from:   2, to: 2,
			fragment: "<blockquote>q</blockquote>",
			want:     "<p><em>ab</em></p><blockquote>q</blockquote><p><em>cd</em></p>",
			cursor:   3,
		},
		{
			name:     "mixed inline and block content",
			markup:   "",
			fragment: "intro<h2>H</h2>",
			want:     "<p>intro</p><h2>H</h2>",
			cursor:   6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newDoc(t, tt.markup)
			require.NoError(t, doc.SetSelection(tt.from, tt.to))

			require.NoError(t, doc.InsertAtCursor(tt.fragment))

			assert.Equal(t, tt.want, doc.Markup())
			assert.Equal(t, tt.cursor, doc.Selection().From)
			assert.True(t, doc.Selection().Empty())
		})
	}
}

func TestChangeNotifications(t *testing.T) {
	doc := newDoc(t, "<p>a</p>")

	var changes []string
	var selections []Selection
	unsubscribe := doc.OnChange(func(markup string) {
		changes = append(changes, markup)
	})
	doc.OnSelectionChange(func(sel Selection) {
		selections = append(selections, sel)
	})

	require.NoError(t, doc.SetSelection(1, 1))
	require.NoError(t, doc.InsertAtCursor("b"))
	require.NoError(t, doc.ReplaceSelection("c"))

	assert.Equal(t, []string{"<p>ab</p>", "<p>abc</p>"}, changes)
	assert.Equal(t, []Selection{{From: 1, To: 1}, {From: 2, To: 2}, {From: 3, To: 3}}, selections)

	unsubscribe()
	require.NoError(t, doc.InsertAtCursor("d"))
	assert.Len(t, changes, 2)
}

func TestListenersMayReadTheDocument(t *testing.T) {
	doc := newDoc(t, "<p>a</p>")
	var seen string
	doc.OnChange(func(string) {
		seen = doc.PlainText()
	})

	require.NoError(t, doc.ReplaceSelection("z"))
	assert.Equal(t, "za", seen)
}

func TestClosedDocumentRejectsMutations(t *testing.T) {
	doc := newDoc(t, "<p>a</p>")
	notified := false
	doc.OnChange(func(string) { notified = true })

	doc.Close()

	assert.True(t, doc.Closed())
	assert.ErrorIs(t, doc.InsertAtCursor("<p>b</p>"), ErrClosed)
	assert.ErrorIs(t, doc.ReplaceSelection("b"), ErrClosed)
	assert.ErrorIs(t, doc.SetSelection(0, 1), ErrClosed)
	assert.False(t, notified)
	assert.Equal(t, "<p>a</p>", doc.Markup())
}
