package editor

import (
	"slices"
	"strings"
	"unicode"
)

// ControlKind is the presentation of a toolbar control.
type ControlKind uint8

const (
	// ControlToggle is a button; formatting toggles reflect an active state.
	ControlToggle ControlKind = iota
	// ControlSelection shows the current value and opens a choice popup.
	ControlSelection
	// ControlPicker shows a color and opens a color popup.
	ControlPicker
)

func (k ControlKind) String() string {
	switch k {
	case ControlSelection:
		return "selection"
	case ControlPicker:
		return "picker"
	default:
		return "toggle"
	}
}

// ToolbarControl is the state of one toolbar control.
type ToolbarControl struct {
	ID      string
	Command Command
	Title   string
	Kind    ControlKind
	// Active marks a toggle as on.
	Active bool
	// Value is the label of a selection control or the color of a picker.
	Value string
	// Custom marks a control backed by a ToolbarOption handler.
	Custom bool

	handler func(*Controller)
}

const (
	inheritedFont   = "(inherited font)"
	inheritedSize   = "(inherited size)"
	inheritedFormat = "(inherited format)"
)

// FontSizeLabels names the legacy font sizes 1 through 7.
var FontSizeLabels = []string{"Tiny", "Small", "Normal", "Large", "X-Large", "XX-Large", "Huge"}

// FormatLabels names the block formats offered by the fontFormat popup.
var FormatLabels = []struct{ Tag, Label string }{
	{"h1", "Heading 1"},
	{"h2", "Heading 2"},
	{"h3", "Heading 3"},
	{"h4", "Heading 4"},
	{"h5", "Heading 5"},
	{"h6", "Heading 6"},
	{"p", "Paragraph"},
}

var defaultColors = map[Command]string{ForeColor: "#000", HiliteColor: "#fff"}

var knownCommands = append(slices.Clone(nativeCommands), FontFormat, Link, Image, Table, Attachment, HTML, Fullscreen)

// toolbar derives control state from the surface.
type toolbar struct {
	controls []*ToolbarControl
	exec     *executor
}

func newToolbar(opts []ToolbarOption, exec *executor) *toolbar {
	tb := &toolbar{exec: exec}
	for _, o := range opts {
		if o.Handler != nil {
			title := o.Title
			if title == "" {
				title = denormalizeCamel(o.Name)
			}
			tb.controls = append(tb.controls, &ToolbarControl{
				ID:      o.Name,
				Command: Command(o.Name),
				Title:   title,
				Custom:  true,
				handler: o.Handler,
			})
			continue
		}
		cmd := Command(o.Name)
		if !slices.Contains(knownCommands, cmd) || tb.find(o.Name) != nil {
			continue
		}
		ctl := &ToolbarControl{ID: o.Name, Command: cmd, Title: o.Title}
		if ctl.Title == "" {
			ctl.Title = commandTitle(cmd)
		}
		switch cmd {
		case FontName:
			ctl.Kind, ctl.Value = ControlSelection, inheritedFont
		case FontSize:
			ctl.Kind, ctl.Value = ControlSelection, inheritedSize
		case FontFormat:
			ctl.Kind, ctl.Value = ControlSelection, inheritedFormat
		case ForeColor, HiliteColor:
			ctl.Kind, ctl.Value = ControlPicker, defaultColors[cmd]
		}
		tb.controls = append(tb.controls, ctl)
	}
	return tb
}

func (tb *toolbar) find(id string) *ToolbarControl {
	for _, c := range tb.controls {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (tb *toolbar) snapshot() []ToolbarControl {
	out := make([]ToolbarControl, len(tb.controls))
	for i, c := range tb.controls {
		out[i] = *c
		out[i].handler = nil
	}
	return out
}

// syncable reports toggles whose state follows the surface.
func (tb *toolbar) syncable(c *ToolbarControl) bool {
	return !c.Custom && c.Kind == ControlToggle && tb.exec.queryable(c.Command)
}

// recompute sets each syncable toggle from the surface state. List and
// justify controls are left alone.
func (tb *toolbar) recompute() {
	for _, c := range tb.controls {
		if !tb.syncable(c) || syncExempt(c.Command) {
			continue
		}
		c.Active = tb.exec.state(c.Command)
	}
}

// reconcile runs on focus. The first pass turns off formatting the surface
// reports but the toolbar does not show, list insertion excepted; the second
// reasserts toggles armed before focus.
func (tb *toolbar) reconcile() {
	for _, c := range tb.controls {
		if !tb.syncable(c) || strings.Contains(strings.ToLower(string(c.Command)), "justify") {
			continue
		}
		if isListInsertion(c.Command) && tb.exec.state(c.Command) {
			continue
		}
		if !c.Active && tb.exec.state(c.Command) {
			tb.exec.run(c.Command, "")
		}
	}
	for _, c := range tb.controls {
		if !tb.syncable(c) || !c.Active {
			continue
		}
		if !tb.exec.state(c.Command) {
			tb.exec.run(c.Command, "")
		}
	}
}

// refreshValues updates the labels of selection and picker controls.
func (tb *toolbar) refreshValues() {
	for _, c := range tb.controls {
		switch c.Command {
		case FontSize:
			c.Value = fontSizeLabel(tb.exec.value(FontSize))
		case FontName:
			c.Value = fontNameLabel(tb.exec.value(FontName))
		case FontFormat:
			c.Value = formatLabel(tb.exec.value(FormatBlock))
		case ForeColor, HiliteColor:
			if c.Kind != ControlPicker {
				continue
			}
			if v := tb.exec.value(c.Command); v != "" {
				c.Value = v
			} else {
				c.Value = defaultColors[c.Command]
			}
		}
	}
}

// clearToggles switches every toggle off.
func (tb *toolbar) clearToggles() {
	for _, c := range tb.controls {
		if c.Kind == ControlToggle {
			c.Active = false
		}
	}
}

func fontSizeLabel(v string) string {
	for i, l := range FontSizeLabels {
		if v == string(rune('1'+i)) {
			return l
		}
	}
	return inheritedSize
}

func fontNameLabel(v string) string {
	first, _, _ := strings.Cut(v, ",")
	first = strings.Trim(strings.TrimSpace(first), `"'`)
	if first == "" {
		return inheritedFont
	}
	return first
}

func formatLabel(tag string) string {
	for _, f := range FormatLabels {
		if f.Tag == tag {
			return f.Label
		}
	}
	return inheritedFormat
}

func commandTitle(cmd Command) string {
	switch cmd {
	case RemoveFormat:
		return "Clear Format"
	case HiliteColor:
		return "Background Color"
	case HTML:
		return "HTML"
	}
	return denormalizeCamel(string(cmd))
}

// denormalizeCamel turns "insertUnorderedList" into "Insert Unordered List".
func denormalizeCamel(s string) string {
	var sb strings.Builder
	for i, r := range s {
		switch {
		case i == 0:
			r = unicode.ToUpper(r)
		case unicode.IsUpper(r):
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
