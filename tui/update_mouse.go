package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/plume/editor"
	"github.com/iw2rmb/plume/surface"
)

func (m Model) updateMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if isWheelMouse(msg) {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch msg.Action { //nolint:exhaustive
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if m.inPopup(msg.X, msg.Y) {
			return m, nil
		}
		if msg.Y < m.toolbarHeight() {
			if id, ok := m.geo.controlAt(msg.X, msg.Y); ok {
				m.pressed = id
				m.ctl.PressToolbar()
			}
			return m, nil
		}
		x, y, ok := m.surfaceCell(msg.X, msg.Y)
		if !ok {
			m.ctl.ClickOutside()
			return m, nil
		}
		m.clickSurface(x, y, msg)

	case tea.MouseActionMotion:
		if !m.mouseDragging {
			return m, nil
		}
		x, y := m.clampToSurface(msg.X, msg.Y)
		p, _, ok := m.layout.pointAt(x, y+m.viewport.YOffset)
		if !ok {
			return m, nil
		}
		m.setSelection(surface.Range{Start: m.mouseAnchor, End: p})

	case tea.MouseActionRelease:
		m.mouseDragging = false
		if id := m.pressed; id != "" {
			m.pressed = ""
			if err := m.ctl.ClickControl(id); err != nil {
				m.log().Debug("Click control", "control", id, "err", err)
			}
			m.ctl.ReleaseToolbar()
		}
	}
	return m, nil
}

// clickSurface moves the caret to a surface cell and reports the click. The
// surface is focused first so the focus handling does not restore an older
// selection over the click.
func (m *Model) clickSurface(x, y int, msg tea.MouseMsg) {
	p, node, ok := m.layout.pointAt(x, y+m.viewport.YOffset)
	if !ok {
		return
	}
	m.ctl.SetFocus(editor.FocusSurface)
	if msg.Shift {
		if r, has := m.ctl.Surface().Selection(); has && m.mouseAnchor.Node == nil {
			m.mouseAnchor = r.Start
		}
		m.setSelection(surface.Range{Start: m.mouseAnchor, End: p})
	} else {
		m.mouseAnchor = p
		m.setSelection(surface.Caret(p))
	}
	m.mouseDragging = true
	m.ctl.Click(editor.ClickEvent{Node: node, Ctrl: msg.Ctrl})
}

func (m Model) setSelection(r surface.Range) {
	if err := m.ctl.Surface().SetSelection(r); err != nil {
		m.log().Debug("Set selection", "err", err)
	}
}

func isWheelMouse(msg tea.MouseMsg) bool {
	return msg.Action == tea.MouseActionPress &&
		(msg.Button == tea.MouseButtonWheelUp ||
			msg.Button == tea.MouseButtonWheelDown ||
			msg.Button == tea.MouseButtonWheelLeft ||
			msg.Button == tea.MouseButtonWheelRight)
}

func (m Model) inPopup(x, y int) bool {
	if m.popupHeight == 0 {
		return false
	}
	b := m.popupBox
	return x >= b.x && x < b.x+b.w && y >= b.y && y < b.y+m.popupHeight
}

// surfaceCell maps window coordinates to surface content coordinates.
func (m Model) surfaceCell(x, y int) (int, int, bool) {
	left, top := m.frameOffset()
	cx := x - left
	cy := y - m.toolbarHeight() - top
	w := m.viewport.Width - m.viewport.Style.GetHorizontalFrameSize()
	h := m.viewport.Height - m.viewport.Style.GetVerticalFrameSize()
	if w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return cx, cy, cx >= 0 && cx < w && cy >= 0 && cy < h
}

func (m Model) clampToSurface(x, y int) (int, int) {
	cx, cy, _ := m.surfaceCell(x, y)
	w := m.viewport.Width - m.viewport.Style.GetHorizontalFrameSize()
	h := m.viewport.Height - m.viewport.Style.GetVerticalFrameSize()
	return clampInt(cx, 0, w-1), clampInt(cy, 0, h-1)
}
