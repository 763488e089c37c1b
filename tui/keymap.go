package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the host key bindings. Editing keys (arrows, Enter,
// Backspace, typed text) go to the controller; these bindings cover what a
// terminal cannot express as a click.
//
// Bindings must be portable across terminals (ctrl/alt fallbacks).
type KeyMap struct {
	Copy, Cut, Paste key.Binding

	// Toolbar moves focus to the toolbar. Inside it, Prev/Next move between
	// controls, Activate clicks one, and Leave returns to the surface.
	Toolbar              key.Binding
	PrevControl          key.Binding
	NextControl          key.Binding
	Activate             key.Binding
	Leave                key.Binding
	Bold, Italic         key.Binding
	Underline, Link      key.Binding
	RawView, Fullscreen  key.Binding
	Attach, OpenLink     key.Binding
	RemoveFile, Blur     key.Binding
	NextField, PrevField key.Binding
	ChoiceUp, ChoiceDown key.Binding
	Check                key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Copy:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "copy")),
		Cut:   key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "cut")),
		Paste: key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "paste")),

		Toolbar:     key.NewBinding(key.WithKeys("f10", "alt+t"), key.WithHelp("f10", "toolbar")),
		PrevControl: key.NewBinding(key.WithKeys("left", "shift+tab"), key.WithHelp("←", "previous control")),
		NextControl: key.NewBinding(key.WithKeys("right", "tab"), key.WithHelp("→", "next control")),
		Activate:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "activate")),
		Leave:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back to text")),

		// ctrl+i is Tab in most terminals.
		Bold:      key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "bold")),
		Italic:    key.NewBinding(key.WithKeys("alt+i"), key.WithHelp("alt+i", "italic")),
		Underline: key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "underline")),
		Link:      key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "link")),

		RawView:    key.NewBinding(key.WithKeys("f12", "alt+h"), key.WithHelp("f12", "html source")),
		Fullscreen: key.NewBinding(key.WithKeys("f11", "alt+f"), key.WithHelp("f11", "fullscreen")),
		Attach:     key.NewBinding(key.WithKeys("alt+a"), key.WithHelp("alt+a", "attach file")),
		OpenLink:   key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "open link")),
		RemoveFile: key.NewBinding(key.WithKeys("alt+backspace"), key.WithHelp("alt+⌫", "remove last file")),
		Blur:       key.NewBinding(key.WithKeys("ctrl+q"), key.WithHelp("ctrl+q", "leave editor")),

		NextField:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevField:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous field")),
		ChoiceUp:   key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "previous choice")),
		ChoiceDown: key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next choice")),
		Check:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
	}
}
