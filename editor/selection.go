package editor

import (
	"log/slog"

	"github.com/iw2rmb/plume/surface"
)

// selectionTracker remembers the surface selection across focus changes.
type selectionTracker struct {
	surf *surface.Surface
	log  *slog.Logger

	saved    surface.Range
	hasSaved bool

	// toolbarInteraction is set while a toolbar press is in flight so the
	// blur commit does not fire mid-click.
	toolbarInteraction bool
}

// capture records the current selection. Without one it reports false and
// keeps the previous capture.
func (t *selectionTracker) capture() (surface.Range, bool) {
	r, ok := t.surf.Selection()
	if !ok {
		return surface.Range{}, false
	}
	t.saved, t.hasSaved = r, true
	return r, true
}

// last returns the most recent capture.
func (t *selectionTracker) last() (surface.Range, bool) {
	return t.saved, t.hasSaved
}

// restore replaces the selection with r, or with the last capture when r is
// nil. A range whose anchors left the document leaves the selection as is.
func (t *selectionTracker) restore(r *surface.Range) {
	target := t.saved
	if r != nil {
		target = *r
	} else if !t.hasSaved {
		return
	}
	if cur, ok := t.surf.Selection(); ok && cur == target.Normalize() {
		return
	}
	if err := t.surf.SetSelection(target); err != nil {
		t.log.Debug("Restore selection", "err", err)
	}
}

func (t *selectionTracker) forget() {
	t.saved, t.hasSaved = surface.Range{}, false
}
