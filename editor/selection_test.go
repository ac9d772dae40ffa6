package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionTracker(t *testing.T) {
	doc := newDoc(t, "<p>Teletreball a l'administració</p>")
	require.NoError(t, doc.SetSelection(0, 11))

	tracker := TrackSelection(doc)
	assert.Equal(t, "Teletreball", tracker.Text())

	require.NoError(t, doc.SetSelection(4, 4))
	assert.Equal(t, "", tracker.Text())
	assert.Equal(t, Selection{From: 4, To: 4}, tracker.Selection())

	require.NoError(t, doc.SetSelection(14, 28))
	assert.Equal(t, "l'administraci", tracker.Text())
}

func TestSelectionTrackerFollowsMutations(t *testing.T) {
	doc := newDoc(t, "<p>abc</p>")
	tracker := TrackSelection(doc)
	require.NoError(t, doc.SetSelection(0, 3))

	require.NoError(t, doc.ReplaceSelection("xy"))

	assert.Equal(t, "", tracker.Text())
	assert.Equal(t, 2, tracker.Selection().From)
}

func TestSelectionTrackerClose(t *testing.T) {
	doc := newDoc(t, "<p>abc</p>")
	tracker := TrackSelection(doc)
	require.NoError(t, doc.SetSelection(0, 1))

	tracker.Close()
	tracker.Close()
	require.NoError(t, doc.SetSelection(0, 3))

	assert.Equal(t, "a", tracker.Text())
}
