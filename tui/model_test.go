package tui

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/iw2rmb/plume/editor"
	"github.com/iw2rmb/plume/surface"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

type memClipboard struct{ text string }

func (c *memClipboard) ReadText() (string, error) { return c.text, nil }

func (c *memClipboard) WriteText(s string) error {
	c.text = s
	return nil
}

func newTestModel(t *testing.T, cfg Config) Model {
	t.Helper()
	m := New(cfg).SetSize(60, 20)
	t.Cleanup(m.Close)
	return m
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func keyOf(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func markup(m Model) string { return m.ctl.Surface().HTML() }

func selectAll(t *testing.T, m Model) {
	t.Helper()
	lines := m.ctl.Surface().Lines()
	if len(lines) == 0 {
		t.Fatalf("no lines in %q", markup(m))
	}
	first := lines[0].Stops()
	last := lines[len(lines)-1].Stops()
	r := surface.Range{Start: first[0], End: last[len(last)-1]}
	if err := m.ctl.Surface().SetSelection(r); err != nil {
		t.Fatalf("set selection: %v", err)
	}
}

func caretAtEnd(t *testing.T, m Model) {
	t.Helper()
	lines := m.ctl.Surface().Lines()
	stops := lines[len(lines)-1].Stops()
	if err := m.ctl.Surface().SetSelection(surface.Caret(stops[len(stops)-1])); err != nil {
		t.Fatalf("set selection: %v", err)
	}
}

// settle feeds scheduler wakeups to the model until done reports true.
func settle(t *testing.T, m Model, done func(Model) bool) Model {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for !done(m) {
		if err := m.loop.Wait(ctx); err != nil {
			t.Fatalf("wait for scheduler: %v (html %q)", err, markup(m))
		}
		m, _ = m.Update(loopMsg{})
	}
	return m
}

func TestNew_FocusesSurface(t *testing.T) {
	m := newTestModel(t, Config{Editor: editor.Config{Value: "<p>ab</p>"}})
	if !m.Focused() || m.ctl.Focus() != editor.FocusSurface {
		t.Fatalf("focus: got %v, want surface", m.ctl.Focus())
	}
	if m.Init() == nil {
		t.Fatalf("init: got nil command, want a scheduler wait")
	}
	view := m.View()
	if !strings.Contains(view, "ab") {
		t.Fatalf("view does not show the content:\n%s", view)
	}
	if !strings.Contains(view, "B") || !strings.Contains(view, "Full") {
		t.Fatalf("view does not show the toolbar:\n%s", view)
	}
}

func TestNew_KeepsCallerLoop(t *testing.T) {
	loop := editor.NewLoop()
	m := newTestModel(t, Config{Editor: editor.Config{Scheduler: loop}})
	if m.loop != loop {
		t.Fatalf("loop: got %p, want %p", m.loop, loop)
	}
	if m.ctl.Scheduler() != loop {
		t.Fatalf("controller scheduler is not the caller's loop")
	}
}

func TestBlur_ShowsPlaceholder(t *testing.T) {
	m := newTestModel(t, Config{Editor: editor.Config{Placeholder: "Write here"}})
	if strings.Contains(m.View(), "Write here") {
		t.Fatalf("placeholder shown while focused")
	}
	m = m.Blur()
	if m.Focused() {
		t.Fatalf("focused after blur")
	}
	if !strings.Contains(m.View(), "Write here") {
		t.Fatalf("placeholder missing after blur:\n%s", m.View())
	}
	m = m.Focus()
	if !m.Focused() {
		t.Fatalf("not focused after focus")
	}
}

func TestSetSize_FixedHeight(t *testing.T) {
	m := newTestModel(t, Config{Editor: editor.Config{Value: "<p>ab</p>"}, Height: 3})
	// three rows plus the rounded border
	if got, want := m.viewport.Height, 5; got != want {
		t.Fatalf("viewport height: got %d, want %d", got, want)
	}
	if got, want := m.geo.SurfaceWidth(), 58; got != want {
		t.Fatalf("surface width: got %d, want %d", got, want)
	}

	m = send(m, tea.WindowSizeMsg{Width: 30, Height: 12})
	if got, want := m.geo.SurfaceWidth(), 28; got != want {
		t.Fatalf("surface width after resize: got %d, want %d", got, want)
	}
}

func TestSetSize_ExpandedFillsWindow(t *testing.T) {
	m := newTestModel(t, Config{Editor: editor.Config{Value: "<p>ab</p>"}, Height: 3})
	m = send(m, keyOf(tea.KeyF11))
	if !m.ctl.Expanded() {
		t.Fatalf("not expanded after the fullscreen binding")
	}
	if got, want := m.viewport.Height, 20-m.toolbarHeight(); got != want {
		t.Fatalf("viewport height: got %d, want %d", got, want)
	}
	if got := lipgloss.Height(m.View()); got != 20 {
		t.Fatalf("view height: got %d, want 20", got)
	}
}

func TestOnChange(t *testing.T) {
	var events []ChangeEvent
	m := newTestModel(t, Config{
		Editor:   editor.Config{Value: "<p>ab</p>", BlurCommitDelay: time.Millisecond},
		OnChange: func(ev ChangeEvent) { events = append(events, ev) },
	})
	caretAtEnd(t, m)
	m = send(m, runes("c"))
	m = m.Blur()

	m = settle(t, m, func(Model) bool { return len(events) > 0 })
	if len(events) != 1 {
		t.Fatalf("events: got %d, want 1", len(events))
	}
	ev := events[0]
	if ev.HTML != "<p>abc</p>" || ev.Empty {
		t.Fatalf("event: got %+v, want html %q", ev, "<p>abc</p>")
	}
	if ev.Version != m.ctl.Surface().Version() {
		t.Fatalf("version: got %d, want %d", ev.Version, m.ctl.Surface().Version())
	}
}

func TestOnChange_KeepsEditorCallback(t *testing.T) {
	var raw []string
	var events []ChangeEvent
	m := newTestModel(t, Config{
		Editor: editor.Config{
			Value:           "<p>ab</p>",
			BlurCommitDelay: time.Millisecond,
			Change:          func(s string) { raw = append(raw, s) },
		},
		OnChange: func(ev ChangeEvent) { events = append(events, ev) },
	})
	selectAll(t, m)
	m = send(m, keyOf(tea.KeyBackspace))
	m = m.Blur()

	m = settle(t, m, func(Model) bool { return len(events) > 0 })
	if len(raw) != 1 || raw[0] != "" {
		t.Fatalf("editor change: got %q, want one empty commit", raw)
	}
	if !events[0].Empty {
		t.Fatalf("event not empty: %+v", events[0])
	}
}
