package editor

import "sync"

// SelectionTracker keeps the latest selection of a document for consumers
// that need it synchronously. Intermediate selections may be skipped.
type SelectionTracker struct {
	mu      sync.RWMutex
	current Selection
	seen    bool

	stop     func()
	stopOnce sync.Once
}

// TrackSelection subscribes to doc and seeds the tracker with the current
// selection. Close releases the subscription.
func TrackSelection(doc *Document) *SelectionTracker {
	t := &SelectionTracker{}
	t.stop = doc.OnSelectionChange(t.update)

	sel := doc.Selection()
	t.mu.Lock()
	if !t.seen {
		t.current = sel
	}
	t.mu.Unlock()
	return t
}

func (t *SelectionTracker) update(sel Selection) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = sel
	t.seen = true
}

// Text returns the selected plain text, empty when the cursor is collapsed.
func (t *SelectionTracker) Text() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current.Text
}

// Selection returns the latest selection seen.
func (t *SelectionTracker) Selection() Selection {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Close unsubscribes from the document. It is safe to call more than once.
func (t *SelectionTracker) Close() {
	t.stopOnce.Do(t.stop)
}
