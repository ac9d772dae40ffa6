// Package editor holds the editable rich-text document and the views derived
// from it. Positions are rune offsets into the document's plain text, which
// is the concatenation of every text node in document order.
package editor

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrClosed is returned by mutations on a document that has been torn down.
var ErrClosed = errors.New("editor: document closed")

// Selection is a cursor range. Text is empty exactly when From == To.
type Selection struct {
	From int
	To   int
	Text string
}

// Empty reports whether the selection is collapsed.
func (s Selection) Empty() bool { return s.From == s.To }

type changeListener struct {
	id int
	fn func(markup string)
}

type selectionListener struct {
	id int
	fn func(Selection)
}

// Document is a mutable markup tree with a cursor.
//
// Listeners run synchronously, in mutation order, after the document lock is
// released, so they may read the document but must not mutate it.
type Document struct {
	mu sync.Mutex
	// notifyMu is taken before mu is released so that notifications keep the
	// order of the mutations that produced them.
	notifyMu sync.Mutex

	root     *html.Node
	from, to int
	closed   bool

	nextID             int
	changeListeners    []changeListener
	selectionListeners []selectionListener

	logger *zap.Logger
}

// NewDocument parses markup into a document with the cursor at the start.
func NewDocument(markup string, logger *zap.Logger) (*Document, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	nodes, err := parseFragment(markup)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	root := newElement(atom.Body)
	for _, n := range nodes {
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) == "" {
			continue
		}
		root.AppendChild(n)
	}
	prune(root)
	return &Document{root: root, logger: logger.Named("editor")}, nil
}

// Markup returns a snapshot of the serialised document.
func (d *Document) Markup() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.renderLocked()
}

// PlainText returns the text the cursor positions index into.
func (d *Document) PlainText() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return plainText(d.root)
}

// Len is the plain text length in runes.
func (d *Document) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return textLen(d.root)
}

// Selection returns the current cursor range and its text.
func (d *Document) Selection() Selection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selectionLocked()
}

// TextBetween returns the text between two positions, in either order, with
// a newline wherever the range crosses from one block into the next.
func (d *Document) TextBetween(from, to int) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	from, to = d.clamp(from, to)
	return textRange(d.root, from, to)
}

// Closed reports whether Close has been called.
func (d *Document) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// SetSelection moves the cursor. Out of range positions are clamped and the
// pair is ordered.
func (d *Document) SetSelection(from, to int) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.from, d.to = d.clamp(from, to)
	d.unlockAndNotify(false)
	return nil
}

// InsertAtCursor inserts a markup fragment at the cursor, removing any active
// selection first. The fragment is not validated.
func (d *Document) InsertAtCursor(fragment string) error {
	nodes, err := parseFragment(fragment)
	if err != nil {
		return fmt.Errorf("parse fragment: %w", err)
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	at, n := d.replaceRangeLocked(nodes)
	d.logger.Debug("inserted fragment", zap.Int("at", at), zap.Int("runes", n))
	d.unlockAndNotify(true)
	return nil
}

// ReplaceSelection deletes the selection and inserts text as plain content in
// its place. With an empty selection it inserts at the cursor.
func (d *Document) ReplaceSelection(text string) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	var nodes []*html.Node
	if text != "" {
		nodes = []*html.Node{{Type: html.TextNode, Data: text}}
	}
	at, n := d.replaceRangeLocked(nodes)
	d.logger.Debug("replaced selection", zap.Int("at", at), zap.Int("runes", n))
	d.unlockAndNotify(true)
	return nil
}

// OnChange registers fn to receive the full markup after every mutation.
// The returned function unsubscribes.
func (d *Document) OnChange(fn func(markup string)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return func() {}
	}
	d.nextID++
	id := d.nextID
	d.changeListeners = append(d.changeListeners, changeListener{id: id, fn: fn})
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, l := range d.changeListeners {
			if l.id == id {
				d.changeListeners = append(d.changeListeners[:i:i], d.changeListeners[i+1:]...)
				return
			}
		}
	}
}

// OnSelectionChange registers fn to receive every selection change.
// The returned function unsubscribes.
func (d *Document) OnSelectionChange(fn func(Selection)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return func() {}
	}
	d.nextID++
	id := d.nextID
	d.selectionListeners = append(d.selectionListeners, selectionListener{id: id, fn: fn})
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, l := range d.selectionListeners {
			if l.id == id {
				d.selectionListeners = append(d.selectionListeners[:i:i], d.selectionListeners[i+1:]...)
				return
			}
		}
	}
}

// Close tears the document down. Listeners are dropped and later mutations
// fail with ErrClosed.
func (d *Document) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.changeListeners = nil
	d.selectionListeners = nil
}

// unlockAndNotify releases mu, which the caller holds, and delivers the
// notifications for the mutation just made.
func (d *Document) unlockAndNotify(contentChanged bool) {
	sel := d.selectionLocked()
	var markup string
	var onChange []changeListener
	if contentChanged {
		markup = d.renderLocked()
		onChange = append(onChange, d.changeListeners...)
	}
	onSelect := append([]selectionListener(nil), d.selectionListeners...)

	d.notifyMu.Lock()
	d.mu.Unlock()
	defer d.notifyMu.Unlock()

	for _, l := range onChange {
		l.fn(markup)
	}
	for _, l := range onSelect {
		l.fn(sel)
	}
}

func (d *Document) selectionLocked() Selection {
	sel := Selection{From: d.from, To: d.to}
	if d.from != d.to {
		sel.Text = textRange(d.root, d.from, d.to)
	}
	return sel
}

func (d *Document) clamp(from, to int) (int, int) {
	n := textLen(d.root)
	from = min(max(from, 0), n)
	to = min(max(to, 0), n)
	if from > to {
		from, to = to, from
	}
	return from, to
}

func (d *Document) renderLocked() string {
	var buf bytes.Buffer
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		// Rendering into a bytes.Buffer only fails on malformed trees,
		// which the mutations below never build.
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// replaceRangeLocked puts nodes where the selection starts, removes the
// selected text behind them and collapses the cursor after the insertion.
func (d *Document) replaceRangeLocked(nodes []*html.Node) (at, added int) {
	from, to := d.from, d.to
	added = d.insertLocked(from, nodes, from != to)
	d.deleteRangeLocked(from+added, to+added)
	d.from, d.to = from+added, from+added
	return from, added
}

// deleteRangeLocked removes the text in [from, to). When the range spans two
// text blocks the trailing block is joined into the leading one.
func (d *Document) deleteRangeLocked(from, to int) {
	if from >= to {
		return
	}
	var startBlock, endBlock *html.Node
	for _, s := range collectText(d.root) {
		lo, hi := max(from, s.start), min(to, s.end)
		if lo >= hi {
			continue
		}
		block := topLevel(s.node, d.root)
		if startBlock == nil {
			startBlock = block
		}
		endBlock = block
		r := []rune(s.node.Data)
		s.node.Data = string(r[:lo-s.start]) + string(r[hi-s.start:])
	}

	if startBlock != nil && endBlock != startBlock {
		for n := startBlock.NextSibling; n != nil && n != endBlock; {
			next := n.NextSibling
			d.root.RemoveChild(n)
			n = next
		}
		if isTextBlock(startBlock) && isTextBlock(endBlock) {
			moveChildren(endBlock, startBlock)
			d.root.RemoveChild(endBlock)
		}
	}
	prune(d.root)
}

// insertLocked places nodes at a position and returns how many runes of
// text they added. With forward set, a position on the boundary between two
// text nodes resolves to the later one.
func (d *Document) insertLocked(at int, nodes []*html.Node, forward bool) int {
	if len(nodes) == 0 {
		return 0
	}
	added := 0
	for _, n := range nodes {
		added += textLen(n)
	}
	if hasBlock(nodes) {
		d.insertBlocks(at, wrapInline(nodes), forward)
	} else {
		d.insertInline(at, nodes, forward)
	}
	prune(d.root)
	return added
}

func (d *Document) insertInline(at int, nodes []*html.Node, forward bool) {
	s, ok := locate(d.root, at, forward)
	if !ok {
		target := d.root.LastChild
		if target == nil || !isTextBlock(target) {
			target = newElement(atom.P)
			d.root.AppendChild(target)
		}
		for _, n := range nodes {
			target.AppendChild(n)
		}
		return
	}

	t := s.node
	r := []rune(t.Data)
	k := at - s.start
	t.Data = string(r[:k])
	parent, ref := t.Parent, t.NextSibling
	for _, n := range nodes {
		parent.InsertBefore(n, ref)
	}
	if k < len(r) {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: string(r[k:])}, ref)
	}
}

func (d *Document) insertBlocks(at int, nodes []*html.Node, forward bool) {
	s, ok := locate(d.root, at, forward)
	if !ok {
		for c := d.root.FirstChild; c != nil; {
			next := c.NextSibling
			if isTextBlock(c) && isEmpty(c) {
				d.root.RemoveChild(c)
			}
			c = next
		}
		for _, n := range nodes {
			d.root.AppendChild(n)
		}
		return
	}

	block := topLevel(s.node, d.root)
	tail := splitBlock(block, s.node, at-s.start)
	ref := block.NextSibling
	for _, n := range nodes {
		d.root.InsertBefore(n, ref)
	}
	if !isEmpty(tail) {
		d.root.InsertBefore(tail, ref)
	}
	if isEmpty(block) {
		d.root.RemoveChild(block)
	}
}

func parseFragment(markup string) ([]*html.Node, error) {
	return html.ParseFragment(strings.NewReader(markup), newElement(atom.Body))
}
