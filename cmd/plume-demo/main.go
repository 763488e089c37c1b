package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/plume"
	"github.com/iw2rmb/plume/editor"
	"github.com/iw2rmb/plume/tui"
)

const sample = `<h2>Hello from plume</h2>` +
	`<p>Type to edit, select with <b>shift+arrows</b> or the mouse.</p>` +
	`<ul><li>F10 moves to the toolbar</li><li>Ctrl+K inserts a link</li><li>Ctrl+D quits</li></ul>` +
	`<p>Paste or type a URL such as https://example.com and press space.</p>`

type model struct {
	editor  tui.Model
	changes int
	last    tui.ChangeEvent
}

func newModel(logger *slog.Logger) *model {
	m := &model{}
	cfg := tui.Config{
		Editor: editor.Config{
			Value:         sample,
			Placeholder:   "Write something...",
			FileUpload:    true,
			CanTab:        true,
			MetaURL:            getEnv("PLUME_META_URL"),
			ImageURL:           getEnv("PLUME_IMAGE_URL"),
			SanitizePaste:      getBoolEnv("PLUME_SANITIZE_PASTE"),
			UploadOnPaste:      getBoolEnv("PLUME_UPLOAD_ON_PASTE"),
			MaxPasteImageWidth: getIntEnv("PLUME_MAX_IMAGE_WIDTH"),
			Logger:             logger,
		},
		Clipboard: tui.SystemClipboard{},
		Style:     tui.DefaultStyle(),
		OnChange: func(ev tui.ChangeEvent) {
			m.changes++
			m.last = ev
		},
	}
	m.editor = tui.New(cfg)
	return m
}

func (m *model) Init() tea.Cmd { return m.editor.Init() }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "ctrl+d" {
		m.editor.Close()
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m *model) View() string { return m.editor.View() }

func getEnv(key string) string {
	val, _ := os.LookupEnv(key)
	return val
}

func getBoolEnv(key string) bool {
	v, err := strconv.ParseBool(getEnv(key))
	if err != nil {
		return false
	}
	return v
}

func getIntEnv(key string) int {
	v, err := strconv.Atoi(getEnv(key))
	if err != nil {
		return 0
	}
	return v
}

func main() {
	logger := slog.New(slog.DiscardHandler)
	if path := getEnv("PLUME_LOG"); path != "" {
		f, err := tea.LogToFile(path, "plume")
		if err != nil {
			_, _ = os.Stderr.WriteString(err.Error() + "\n")
			os.Exit(1)
		}
		defer f.Close()
		logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
		logger.Info("Starting", "version", plume.Version())
	}

	m := newModel(logger)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	if content, ok := m.editor.Controller().Content(); ok {
		fmt.Println(content)
	}
	if m.changes > 0 {
		fmt.Fprintf(os.Stderr, "%d change(s), last at version %d\n", m.changes, m.last.Version)
	}
}
