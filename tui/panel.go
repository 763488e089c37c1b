package tui

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/plume/editor"
)

// hostState is shared by every copy of the Model. Controller callbacks write
// to it while Update runs.
type hostState struct {
	// attach is the pending file request of the attachment control.
	attach func([]editor.File)
}

func (h *hostState) pickFiles(attach func([]editor.File)) { h.attach = attach }

// renderPanel lists attached files and link preview cards below the surface.
func (m Model) renderPanel() string {
	s := m.cfg.Style
	var parts []string
	if files := m.ctl.Files(); len(files) > 0 {
		names := make([]string, 0, len(files))
		for _, f := range files {
			names = append(names, f.Name+" ("+f.SizeLabel()+")")
		}
		parts = append(parts, s.Panel.Render("Files: "+strings.Join(names, ", ")))
	}
	for _, c := range m.ctl.MetaCards() {
		lines := []string{c.Title}
		if c.Description != "" {
			lines = append(lines, c.Description)
		}
		lines = append(lines, c.URL)
		parts = append(parts, s.Card.Render(strings.Join(lines, "\n")))
	}
	return strings.Join(parts, "\n")
}

func (m Model) startPicker() (Model, tea.Cmd) {
	fp := filepicker.New()
	if wd, err := os.Getwd(); err == nil {
		fp.CurrentDirectory = wd
	}
	fp.ShowPermissions = false
	fp.SetHeight(max(m.viewport.Height-4, 5))
	m.picker = fp
	m.picking = true
	return m, m.picker.Init()
}

func (m Model) updatePicker(msg tea.Msg) (Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		m.picking = false
		m.host.attach = nil
		m.ctl.SetFocus(editor.FocusSurface)
		return m, nil
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.picking = false
		attach := m.host.attach
		m.host.attach = nil
		m.ctl.SetFocus(editor.FocusSurface)
		f, err := readFile(path)
		if err != nil {
			m.log().Warn("Read attachment", "path", path, "err", err)
			return m, cmd
		}
		attach([]editor.File{f})
	}
	return m, cmd
}

func readFile(path string) (editor.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return editor.File{}, err
	}
	return editor.File{
		Name:   filepath.Base(path),
		Size:   int64(len(data)),
		Handle: bytes.NewReader(data),
	}, nil
}

func (m Model) renderPicker() string {
	s := m.cfg.Style
	return s.Popup.Render(s.PopupTitle.Render("Attach a file") + "\n" + m.picker.View())
}
