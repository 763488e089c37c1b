package tui

import "github.com/iw2rmb/plume/editor"

// ChangeEvent is emitted when the controller commits content.
type ChangeEvent struct {
	Version uint64
	HTML    string
	// Empty is set when the committed content is the empty string.
	Empty bool
	Files   []editor.AttachedFile
}

func buildChangeEvent(c *editor.Controller, html string) ChangeEvent {
	return ChangeEvent{
		Version: c.Surface().Version(),
		HTML:    html,
		Empty:   html == "",
		Files:   c.Files(),
	}
}
