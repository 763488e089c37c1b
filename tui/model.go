package tui

import (
	"context"
	"io"
	"log/slog"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/iw2rmb/plume/editor"
	"github.com/iw2rmb/plume/surface"
)

// loopMsg reports queued scheduler callbacks.
type loopMsg struct{}

// Model is a Bubble Tea component hosting an editor.Controller.
//
// The controller is driven from Update only; deferred callbacks are drained
// there too.
type Model struct {
	cfg    Config
	ctl    *editor.Controller
	loop   *editor.Loop
	geo    *geometry
	host   *hostState
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	width, height int

	viewport    viewport.Model
	layout      docLayout
	toolbar     string
	panel       string
	popupBox    rect
	popupHeight int
	lastVersion uint64

	toolbarIdx int
	popup      popupView
	picker     filepicker.Model
	picking    bool

	// pressed is the toolbar control under a mouse press.
	pressed       string
	mouseAnchor   surface.Point
	mouseDragging bool
}

func New(cfg Config) Model {
	cfg = normalizeConfig(cfg)
	m := Model{
		cfg:      cfg,
		geo:      newGeometry(),
		host:     &hostState{},
		logger:   cfg.Editor.Logger,
		viewport: viewport.New(0, 0),
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m.ctx, m.cancel = context.WithCancel(cfg.Context)

	ecfg := cfg.Editor
	switch s := ecfg.Scheduler.(type) {
	case nil:
		m.loop = editor.NewLoop()
		ecfg.Scheduler = m.loop
	case *editor.Loop:
		m.loop = s
	}
	ecfg.Layout = m.geo
	ecfg.PickFiles = m.host.pickFiles

	var ctl *editor.Controller
	change := ecfg.Change
	ecfg.Change = func(html string) {
		if change != nil {
			change(html)
		}
		if cfg.OnChange != nil {
			cfg.OnChange(buildChangeEvent(ctl, html))
		}
	}
	ctl = editor.New(ecfg)
	m.ctl = ctl
	m.ctl.SetFocus(editor.FocusSurface)
	m.refresh()
	return m
}

// Controller returns the hosted controller. Calls must come from the
// goroutine running the Bubble Tea program.
func (m Model) Controller() *editor.Controller { return m.ctl }

func (m Model) Init() tea.Cmd { return m.waitLoop() }

// Close cancels the scheduler wait and the controller's pending work.
func (m Model) Close() {
	m.cancel()
	m.ctl.Close()
}

func (m Model) SetSize(width, height int) Model {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	m.width, m.height = width, height
	m.lastVersion = 0
	m.refresh()
	return m
}

// Focus gives the surface input focus.
func (m Model) Focus() Model {
	m.ctl.SetFocus(editor.FocusSurface)
	m.refresh()
	return m
}

// Blur moves focus outside the widget, as a click elsewhere would.
func (m Model) Blur() Model {
	m.ctl.ClickOutside()
	m.refresh()
	return m
}

func (m Model) Focused() bool { return m.ctl.Focus() != editor.FocusOutside }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case loopMsg:
		m.drain()
		m.refresh()
		return m, m.waitLoop()
	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil
	}

	if m.picking {
		m, cmd = m.updatePicker(msg)
	} else {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			m, cmd = m.updateKey(msg)
		case tea.MouseMsg:
			m, cmd = m.updateMouse(msg)
		}
	}
	m.drain()
	m.refresh()

	if m.host.attach != nil && !m.picking {
		var pc tea.Cmd
		m, pc = m.startPicker()
		cmd = tea.Batch(cmd, pc)
	}
	return m, cmd
}

func (m Model) View() string {
	parts := make([]string, 0, 3)
	if m.toolbar != "" {
		parts = append(parts, m.toolbar)
	}
	parts = append(parts, m.viewport.View())
	if m.panel != "" {
		parts = append(parts, m.panel)
	}
	base := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if m.picking {
		return overlay.Composite(m.renderPicker(), base, overlay.Left, overlay.Top, 2, m.toolbarHeight())
	}
	if st, ok := m.openPopup(); ok {
		return overlay.Composite(m.renderPopup(st), base, overlay.Left, overlay.Top, m.popupBox.x, m.popupBox.y)
	}
	return base
}

func (m Model) waitLoop() tea.Cmd {
	if m.loop == nil {
		return nil
	}
	loop, ctx := m.loop, m.ctx
	return func() tea.Msg {
		if err := loop.Wait(ctx); err != nil {
			return nil
		}
		return loopMsg{}
	}
}

func (m *Model) drain() {
	if m.loop != nil {
		m.loop.Drain()
	}
}

func (m Model) log() *slog.Logger { return m.logger }

func (m Model) toolbarHeight() int {
	if m.toolbar == "" {
		return 0
	}
	return lipgloss.Height(m.toolbar)
}

// frameOffset is the cell offset of the surface content inside its frame.
func (m Model) frameOffset() (left, top int) {
	s := m.viewport.Style
	left = s.GetMarginLeft() + s.GetBorderLeftSize() + s.GetPaddingLeft()
	top = s.GetMarginTop() + s.GetBorderTopSize() + s.GetPaddingTop()
	return left, top
}

// refresh follows the controller after it ran: popups, then the rendered
// toolbar, surface, and panel.
func (m *Model) refresh() {
	m.syncPopup()

	st := m.cfg.Style
	focusIdx := -1
	if m.ctl.Focus() == editor.FocusToolbar && m.popup.id == "" {
		focusIdx = m.toolbarIdx
	}
	m.toolbar = renderToolbar(m.ctl.Toolbar(), st, focusIdx, m.width, m.geo)
	m.panel = m.renderPanel()

	frame := st.Surface
	if m.ctl.Pulse().Active() {
		frame = st.Pulse
	}
	m.viewport.Style = frame
	m.viewport.Width = m.width

	h := m.cfg.Height + frame.GetVerticalFrameSize()
	if m.height > 0 && (m.cfg.Height == 0 || m.ctl.Expanded()) {
		h = m.height - m.toolbarHeight()
		if m.panel != "" {
			h -= lipgloss.Height(m.panel)
		}
	}
	m.viewport.Height = max(h, 0)

	contentWidth := m.width - frame.GetHorizontalFrameSize()
	m.geo.surfaceWidth = max(contentWidth, 0)

	surf := m.ctl.Surface()
	m.layout = buildLayout(surf, st, contentWidth)
	if m.ctl.Empty() && m.ctl.Focus() != editor.FocusSurface && m.ctl.Placeholder() != "" {
		m.viewport.SetContent(st.Placeholder.Render(m.ctl.Placeholder()))
	} else {
		rs := m.renderState()
		m.viewport.SetContent(renderRows(m.layout, st, rs))
		if v := surf.Version(); v != m.lastVersion {
			m.lastVersion = v
			m.followCursor(rs.caret)
		}
	}

	if pst, ok := m.openPopup(); ok {
		box := m.renderPopup(pst)
		left, _ := m.frameOffset()
		m.geo.popups[pst.ID] = lipgloss.Width(box)
		m.popupBox = rect{x: left + pst.Offset, y: m.toolbarHeight(), w: lipgloss.Width(box)}
		m.popupHeight = lipgloss.Height(box)
	} else {
		m.popupBox, m.popupHeight = rect{}, 0
	}
}

func (m *Model) followCursor(caret pos) {
	h := m.viewport.Height - m.viewport.Style.GetVerticalFrameSize()
	if h <= 0 {
		return
	}
	row := m.layout.rowOf(caret)
	y := m.viewport.YOffset
	if row < y {
		m.viewport.SetYOffset(row)
		return
	}
	if row >= y+h {
		m.viewport.SetYOffset(row - h + 1)
	}
}
