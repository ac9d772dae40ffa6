package editor

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var textBlocks = map[atom.Atom]bool{
	atom.P: true, atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true, atom.Blockquote: true, atom.Pre: true,
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true,
	atom.H6: true, atom.Ul: true, atom.Ol: true, atom.Li: true, atom.Blockquote: true,
	atom.Pre: true, atom.Div: true, atom.Figure: true, atom.Hr: true, atom.Table: true,
	atom.Iframe: true, atom.Video: true,
}

var inlineElements = map[atom.Atom]bool{
	atom.A: true, atom.Strong: true, atom.B: true, atom.Em: true, atom.I: true, atom.U: true,
	atom.S: true, atom.Mark: true, atom.Code: true, atom.Span: true, atom.Sub: true, atom.Sup: true,
}

var mediaElements = map[atom.Atom]bool{
	atom.Img: true, atom.Iframe: true, atom.Video: true, atom.Hr: true,
}

type textSpan struct {
	node       *html.Node
	start, end int
}

func newElement(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
}

func collectText(root *html.Node) []textSpan {
	var spans []textSpan
	pos := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				l := utf8.RuneCountInString(c.Data)
				spans = append(spans, textSpan{node: c, start: pos, end: pos + l})
				pos += l
				continue
			}
			walk(c)
		}
	}
	walk(root)
	return spans
}

// locate finds the text node holding a position. At a boundary between two
// nodes the earlier one wins unless forward is set.
func locate(root *html.Node, at int, forward bool) (textSpan, bool) {
	spans := collectText(root)
	if forward {
		for _, s := range spans {
			if s.start <= at && at < s.end {
				return s, true
			}
		}
	}
	for _, s := range spans {
		if s.start <= at && at <= s.end {
			return s, true
		}
	}
	return textSpan{}, false
}

func plainText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for _, s := range collectText(n) {
		b.WriteString(s.node.Data)
	}
	return b.String()
}

// textRange returns the text between two positions. Pieces that sit in
// different blocks are joined with a newline, which does not count towards
// the positions.
func textRange(root *html.Node, from, to int) string {
	var b strings.Builder
	var prevBlock *html.Node
	for _, s := range collectText(root) {
		lo, hi := max(from, s.start), min(to, s.end)
		if lo >= hi {
			continue
		}
		block := enclosingBlock(s.node, root)
		if b.Len() > 0 && block != prevBlock {
			b.WriteByte('\n')
		}
		b.WriteString(runeSlice(s.node.Data, lo-s.start, hi-s.start))
		prevBlock = block
	}
	return b.String()
}

// enclosingBlock returns the nearest block ancestor of n below root, or root.
func enclosingBlock(n, root *html.Node) *html.Node {
	for p := n.Parent; p != nil && p != root; p = p.Parent {
		if p.Type == html.ElementNode && blockElements[p.DataAtom] {
			return p
		}
	}
	return root
}

func textLen(n *html.Node) int {
	if n.Type == html.TextNode {
		return utf8.RuneCountInString(n.Data)
	}
	total := 0
	for _, s := range collectText(n) {
		total += s.end - s.start
	}
	return total
}

func runeSlice(s string, from, to int) string {
	r := []rune(s)
	from = min(max(from, 0), len(r))
	to = min(max(to, from), len(r))
	return string(r[from:to])
}

// topLevel returns the ancestor of n that is a direct child of root.
func topLevel(n, root *html.Node) *html.Node {
	for n.Parent != nil && n.Parent != root {
		n = n.Parent
	}
	return n
}

func isTextBlock(n *html.Node) bool {
	return n.Type == html.ElementNode && textBlocks[n.DataAtom]
}

func hasBlock(nodes []*html.Node) bool {
	for _, n := range nodes {
		if n.Type == html.ElementNode && (blockElements[n.DataAtom] || mediaElements[n.DataAtom]) {
			return true
		}
	}
	return false
}

// isEmpty reports whether n carries neither text nor embedded media.
func isEmpty(n *html.Node) bool {
	if n.Type == html.TextNode {
		return n.Data == ""
	}
	if n.Type == html.ElementNode && mediaElements[n.DataAtom] {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !isEmpty(c) {
			return false
		}
	}
	return true
}

// wrapInline groups runs of inline nodes between blocks into paragraphs.
func wrapInline(nodes []*html.Node) []*html.Node {
	var out []*html.Node
	var p *html.Node
	for _, n := range nodes {
		block := n.Type == html.ElementNode && (blockElements[n.DataAtom] || mediaElements[n.DataAtom])
		if block {
			p = nil
			out = append(out, n)
			continue
		}
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) == "" {
			continue
		}
		if p == nil {
			p = newElement(atom.P)
			out = append(out, p)
		}
		p.AppendChild(n)
	}
	return out
}

// splitBlock cuts block at rune offset k of text node t. block keeps the
// leading half; the trailing half is returned as a detached copy.
func splitBlock(block, t *html.Node, k int) *html.Node {
	r := []rune(t.Data)
	t.Data = string(r[:k])
	tail := &html.Node{Type: html.TextNode, Data: string(r[k:])}

	child, childCopy := t, tail
	for child != block {
		parent := child.Parent
		parentCopy := shallowClone(parent)
		parentCopy.AppendChild(childCopy)
		for sib := child.NextSibling; sib != nil; {
			next := sib.NextSibling
			parent.RemoveChild(sib)
			parentCopy.AppendChild(sib)
			sib = next
		}
		child, childCopy = parent, parentCopy
	}
	return childCopy
}

func shallowClone(n *html.Node) *html.Node {
	return &html.Node{
		Type:      n.Type,
		Data:      n.Data,
		DataAtom:  n.DataAtom,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
}

func moveChildren(from, to *html.Node) {
	for c := from.FirstChild; c != nil; {
		next := c.NextSibling
		from.RemoveChild(c)
		to.AppendChild(c)
		c = next
	}
}

// prune drops empty text nodes and inline elements left without children.
func prune(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch c.Type {
		case html.TextNode:
			if c.Data == "" {
				n.RemoveChild(c)
			}
		case html.ElementNode:
			prune(c)
			if inlineElements[c.DataAtom] && c.FirstChild == nil {
				n.RemoveChild(c)
			}
		}
		c = next
	}
}
