package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iw2rmb/plume/editor"
)

const swatchesPerRow = 8

// popupView is the host side of the open popup: one text input per field
// and the focused field or choice.
type popupView struct {
	id     string
	inputs []textinput.Model
	// focus indexes the fields; len(fields) is the choice list.
	focus  int
	choice int
}

func (p popupView) onChoices(st editor.PopupState) bool {
	return len(st.Choices) > 0 && p.focus == len(st.Fields)
}

func (p popupView) focusedField(st editor.PopupState) (editor.Field, bool) {
	if p.focus < 0 || p.focus >= len(st.Fields) {
		return editor.Field{}, false
	}
	return st.Fields[p.focus], true
}

func newPopupView(st editor.PopupState) popupView {
	pv := popupView{id: st.ID, inputs: make([]textinput.Model, len(st.Fields))}
	for i, f := range st.Fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 2048
		ti.Width = defaultPopupWidth - 16
		ti.SetValue(f.Value)
		pv.inputs[i] = ti
	}
	if len(st.Choices) > 0 {
		pv.focus = len(st.Fields)
	}
	for i, c := range st.Choices {
		if f, ok := st.Field(firstFieldName(st)); ok && f.Value == c.Value {
			pv.choice = i
		}
	}
	pv.focusInput()
	return pv
}

func firstFieldName(st editor.PopupState) string {
	if len(st.Fields) == 0 {
		return ""
	}
	return st.Fields[0].Name
}

func (p *popupView) focusInput() {
	for i := range p.inputs {
		if i == p.focus {
			p.inputs[i].Focus()
		} else {
			p.inputs[i].Blur()
		}
	}
}

// openPopup returns the first open popup.
func (m Model) openPopup() (editor.PopupState, bool) {
	for _, st := range m.ctl.Popups() {
		if st.Open() {
			return st, true
		}
	}
	return editor.PopupState{}, false
}

// syncPopup follows the controller: a newly opened popup gets fresh inputs
// and focus; a closed one hands focus back to the surface.
func (m *Model) syncPopup() {
	st, ok := m.openPopup()
	if !ok {
		if m.popup.id != "" {
			m.popup = popupView{}
			if f := m.ctl.Focus(); f == editor.FocusPopup || f == editor.FocusToolbar {
				m.ctl.SetFocus(editor.FocusSurface)
			}
		}
		return
	}
	if st.ID == m.popup.id {
		return
	}
	m.popup = newPopupView(st)
	m.ctl.SetFocus(editor.FocusPopup)
}

func (m Model) updatePopupKey(msg tea.KeyMsg, st editor.PopupState) (Model, tea.Cmd) {
	km := m.cfg.KeyMap
	id := st.ID
	stops := len(st.Fields)
	if len(st.Choices) > 0 {
		stops++
	}

	switch {
	case msg.Type == tea.KeyEsc:
		m.ctl.PopupKeyDown(id, editor.KeyEvent{Key: editor.KeyEscape})
		return m, nil
	case msg.Type == tea.KeyEnter:
		if m.popup.onChoices(st) {
			if err := m.ctl.ChoosePopup(id, m.popup.choice); err != nil {
				m.log().Debug("Choose popup value", "popup", id, "err", err)
			}
			return m, nil
		}
		m.ctl.PopupKeyDown(id, editor.KeyEvent{Key: editor.KeyEnter})
		return m, nil
	case key.Matches(msg, km.NextField):
		if stops > 0 {
			m.popup.focus = (m.popup.focus + 1) % stops
			m.popup.focusInput()
		}
		return m, nil
	case key.Matches(msg, km.PrevField):
		if stops > 0 {
			m.popup.focus = (m.popup.focus - 1 + stops) % stops
			m.popup.focusInput()
		}
		return m, nil
	}

	if m.popup.onChoices(st) {
		n := len(st.Choices)
		step := 1
		if allColors(st.Choices) {
			step = swatchesPerRow
		}
		switch {
		case key.Matches(msg, km.ChoiceDown):
			m.popup.choice = min(m.popup.choice+step, n-1)
		case key.Matches(msg, km.ChoiceUp):
			m.popup.choice = max(m.popup.choice-step, 0)
		case msg.Type == tea.KeyRight:
			m.popup.choice = min(m.popup.choice+1, n-1)
		case msg.Type == tea.KeyLeft:
			m.popup.choice = max(m.popup.choice-1, 0)
		}
		return m, nil
	}

	f, ok := m.popup.focusedField(st)
	if !ok {
		return m, nil
	}
	if f.Checkbox {
		if key.Matches(msg, km.Check) {
			m.setPopupField(id, f.Name, strconv.FormatBool(!f.Checked()))
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.popup.inputs[m.popup.focus], cmd = m.popup.inputs[m.popup.focus].Update(msg)
	m.setPopupField(id, f.Name, m.popup.inputs[m.popup.focus].Value())
	return m, cmd
}

func (m Model) setPopupField(id, name, value string) {
	if err := m.ctl.SetPopupField(id, name, value); err != nil {
		m.log().Debug("Set popup field", "popup", id, "field", name, "err", err)
	}
}

func allColors(choices []editor.Choice) bool {
	for _, c := range choices {
		if !strings.HasPrefix(c.Value, "#") {
			return false
		}
	}
	return len(choices) > 0
}

func (m Model) renderPopup(st editor.PopupState) string {
	s := m.cfg.Style
	var lines []string
	lines = append(lines, s.PopupTitle.Render(m.controlTitle(st.ID)))

	for i, f := range st.Fields {
		label := f.Label
		if label == "" {
			label = f.Name
		}
		ls := s.Field
		if f.Invalid {
			ls = s.FieldInvalid
		}
		var value string
		switch {
		case f.Checkbox && f.Checked():
			value = "[x]"
		case f.Checkbox:
			value = "[ ]"
		case i < len(m.popup.inputs):
			value = m.popup.inputs[i].View()
		default:
			value = f.Value
		}
		if f.Checkbox && i == m.popup.focus {
			value = s.ChoiceActive.Render(value)
		}
		lines = append(lines, ls.Render(label+":")+" "+value)
	}

	if len(st.Choices) > 0 {
		active := -1
		if m.popup.onChoices(st) {
			active = m.popup.choice
		}
		lines = append(lines, renderChoices(st.Choices, s, active)...)
	}
	return s.Popup.Render(strings.Join(lines, "\n"))
}

func renderChoices(choices []editor.Choice, s Style, active int) []string {
	if allColors(choices) {
		var rows []string
		var row strings.Builder
		for i, c := range choices {
			if i > 0 && i%swatchesPerRow == 0 {
				rows = append(rows, row.String())
				row.Reset()
			}
			sw := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Value))
			if i == active {
				sw = sw.Inherit(s.ChoiceActive)
			}
			row.WriteString(sw.Render("■") + " ")
		}
		return append(rows, row.String())
	}
	out := make([]string, 0, len(choices))
	for i, c := range choices {
		style := s.Choice
		if i == active {
			style = s.ChoiceActive
		}
		out = append(out, style.Render(c.Label))
	}
	return out
}

func (m Model) controlTitle(id string) string {
	for _, c := range m.ctl.Toolbar() {
		if c.ID == id && c.Title != "" {
			return c.Title
		}
	}
	return id
}
