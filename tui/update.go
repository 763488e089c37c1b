package tui

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/plume/editor"
)

func (m Model) updateKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if st, ok := m.openPopup(); ok {
		return m.updatePopupKey(msg, st)
	}
	km := m.cfg.KeyMap

	switch m.ctl.Focus() {
	case editor.FocusToolbar:
		return m.updateToolbarKey(msg)
	case editor.FocusOutside:
		if key.Matches(msg, km.Blur) {
			return m, nil
		}
		// keys reaching an unfocused widget focus it first
		m.ctl.SetFocus(editor.FocusSurface)
	case editor.FocusSurface:
	default:
		m.ctl.SetFocus(editor.FocusSurface)
	}

	// Paste events always insert their payload and never trigger shortcuts.
	if msg.Type == tea.KeyRunes && msg.Paste {
		if len(msg.Runes) > 0 {
			m.ctl.Paste(editor.PasteEvent{Text: normalizeNewlines(string(msg.Runes))})
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, km.Copy):
		m.copySelection()
	case key.Matches(msg, km.Cut):
		m.cutSelection()
	case key.Matches(msg, km.Paste):
		m.pasteClipboard()
	case key.Matches(msg, km.Toolbar):
		m.ctl.PressToolbar()
		m.ctl.ReleaseToolbar()
		m.toolbarIdx = clampInt(m.toolbarIdx, 0, len(m.ctl.Toolbar())-1)
	case key.Matches(msg, km.Bold):
		m.activate(string(editor.Bold))
	case key.Matches(msg, km.Italic):
		m.activate(string(editor.Italic))
	case key.Matches(msg, km.Underline):
		m.activate(string(editor.Underline))
	case key.Matches(msg, km.Link):
		m.activate(string(editor.Link))
	case key.Matches(msg, km.RawView):
		m.activate(string(editor.HTML))
	case key.Matches(msg, km.Fullscreen):
		m.activate(string(editor.Fullscreen))
	case key.Matches(msg, km.Attach):
		m.activate(string(editor.Attachment))
	case key.Matches(msg, km.OpenLink):
		if head, ok := m.ctl.Surface().Head(); ok {
			m.ctl.Click(editor.ClickEvent{Node: head.Node, Ctrl: true})
		}
	case key.Matches(msg, km.RemoveFile):
		if files := m.ctl.Files(); len(files) > 0 {
			m.ctl.RemoveFile(files[len(files)-1].ID)
		}
	case key.Matches(msg, km.Blur):
		m.ctl.ClickOutside()
	default:
		if ev, ok := keyEvent(msg); ok {
			m.ctl.Key(ev)
		}
	}
	return m, nil
}

func (m Model) updateToolbarKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	km := m.cfg.KeyMap
	controls := m.ctl.Toolbar()
	n := len(controls)
	if n == 0 {
		m.ctl.SetFocus(editor.FocusSurface)
		return m, nil
	}
	m.toolbarIdx = clampInt(m.toolbarIdx, 0, n-1)

	switch {
	case key.Matches(msg, km.Leave):
		m.ctl.SetFocus(editor.FocusSurface)
	case key.Matches(msg, km.PrevControl):
		m.toolbarIdx = (m.toolbarIdx - 1 + n) % n
	case key.Matches(msg, km.NextControl):
		m.toolbarIdx = (m.toolbarIdx + 1) % n
	case key.Matches(msg, km.Activate):
		m.activate(controls[m.toolbarIdx].ID)
	}
	return m, nil
}

func (m Model) activate(id string) {
	if err := m.ctl.Activate(id); err != nil {
		m.log().Debug("Activate control", "control", id, "err", err)
	}
}

// keyEvent translates a terminal key into a controller key event.
func keyEvent(msg tea.KeyMsg) (editor.KeyEvent, bool) {
	named := func(k string, shift bool) (editor.KeyEvent, bool) {
		return editor.KeyEvent{Key: k, Shift: shift, Alt: msg.Alt}, true
	}
	switch msg.Type {
	case tea.KeyEnter:
		return named(editor.KeyEnter, false)
	case tea.KeyTab:
		return named(editor.KeyTab, false)
	case tea.KeyShiftTab:
		return named(editor.KeyTab, true)
	case tea.KeyBackspace, tea.KeyCtrlH:
		return named(editor.KeyBackspace, false)
	case tea.KeyDelete:
		return named(editor.KeyDelete, false)
	case tea.KeyEsc:
		return named(editor.KeyEscape, false)
	case tea.KeySpace:
		return named(editor.KeySpace, false)
	case tea.KeyLeft, tea.KeyShiftLeft:
		return named(editor.KeyLeft, msg.Type == tea.KeyShiftLeft)
	case tea.KeyRight, tea.KeyShiftRight:
		return named(editor.KeyRight, msg.Type == tea.KeyShiftRight)
	case tea.KeyUp, tea.KeyShiftUp:
		return named(editor.KeyUp, msg.Type == tea.KeyShiftUp)
	case tea.KeyDown, tea.KeyShiftDown:
		return named(editor.KeyDown, msg.Type == tea.KeyShiftDown)
	case tea.KeyHome, tea.KeyShiftHome:
		return named(editor.KeyHome, msg.Type == tea.KeyShiftHome)
	case tea.KeyEnd, tea.KeyShiftEnd:
		return named(editor.KeyEnd, msg.Type == tea.KeyShiftEnd)
	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return editor.KeyEvent{}, false
		}
		return editor.KeyEvent{Key: string(msg.Runes), Alt: msg.Alt}, true
	}
	if rest, ok := strings.CutPrefix(msg.String(), "ctrl+"); ok && utf8.RuneCountInString(rest) == 1 {
		return editor.KeyEvent{Key: rest, Ctrl: true}, true
	}
	return editor.KeyEvent{}, false
}

func (m Model) copySelection() {
	if m.cfg.Clipboard == nil {
		return
	}
	s := m.ctl.Surface().SelectedText()
	if s == "" {
		return
	}
	if err := m.cfg.Clipboard.WriteText(s); err != nil {
		m.log().Debug("Write clipboard", "err", err)
	}
}

func (m Model) cutSelection() {
	if m.cfg.Clipboard == nil || m.ctl.Surface().SelectedText() == "" {
		return
	}
	m.copySelection()
	m.ctl.Key(editor.KeyEvent{Key: editor.KeyBackspace})
}

func (m Model) pasteClipboard() {
	if m.cfg.Clipboard == nil {
		return
	}
	s, err := m.cfg.Clipboard.ReadText()
	if err != nil {
		m.log().Debug("Read clipboard", "err", err)
		return
	}
	if s == "" {
		return
	}
	m.ctl.Paste(editor.PasteEvent{Text: normalizeNewlines(s)})
}

// normalizeNewlines folds newlines from external sources to \n.
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
