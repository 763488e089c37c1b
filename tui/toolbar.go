package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/iw2rmb/plume/editor"
)

var controlLabels = map[editor.Command]string{
	editor.Bold:                "B",
	editor.Italic:              "I",
	editor.Underline:           "U",
	editor.Strikethrough:       "S",
	editor.RemoveFormat:        "Tx",
	editor.InsertOrderedList:   "1.",
	editor.InsertUnorderedList: "•",
	editor.JustifyLeft:         "⇤",
	editor.JustifyCenter:       "↔",
	editor.JustifyRight:        "⇥",
	editor.JustifyFull:         "≡",
	editor.Indent:              "»",
	editor.Outdent:             "«",
	editor.Link:                "Link",
	editor.Image:               "Img",
	editor.Table:               "Table",
	editor.Attachment:          "Attach",
	editor.HTML:                "</>",
	editor.Fullscreen:          "Full",
	editor.ForeColor:           "A",
	editor.HiliteColor:         "H",
}

func controlLabel(c editor.ToolbarControl) string {
	if c.Custom {
		if c.Title != "" {
			return c.Title
		}
		return c.ID
	}
	switch c.Kind {
	case editor.ControlSelection:
		return c.Value + " ▾"
	case editor.ControlPicker:
		return controlLabels[c.Command] + "■"
	}
	if l, ok := controlLabels[c.Command]; ok {
		return l
	}
	return c.ID
}

// renderToolbar lays the controls out in rows no wider than width and records
// their cells in g.
func renderToolbar(controls []editor.ToolbarControl, st Style, focused int, width int, g *geometry) string {
	clear(g.controls)
	var (
		rows []string
		row  strings.Builder
		x    int
	)
	for i, c := range controls {
		style := st.Control
		switch {
		case i == focused:
			style = st.ControlFocused
		case c.Active:
			style = st.ControlActive
		}
		label := controlLabel(c)
		var cell string
		if c.Kind == editor.ControlPicker && c.Value != "" {
			text := strings.TrimSuffix(label, "■")
			cell = style.Render(text + lipgloss.NewStyle().Foreground(lipgloss.Color(c.Value)).Render("■"))
		} else {
			cell = style.Render(label)
		}
		w := lipgloss.Width(cell)
		if width > 0 && x > 0 && x+w > width {
			rows = append(rows, row.String())
			row.Reset()
			x = 0
		}
		g.controls[c.ID] = rect{x: x, y: len(rows), w: w}
		row.WriteString(cell)
		x += w
	}
	if row.Len() > 0 {
		rows = append(rows, row.String())
	}
	return st.Toolbar.Render(strings.Join(rows, "\n"))
}
