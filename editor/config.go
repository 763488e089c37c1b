package editor

import (
	"io"
	"log/slog"
	"time"

	"github.com/iw2rmb/plume/remote"
)

// Config configures a Controller.
type Config struct {
	// Value is the initial HTML content.
	Value string
	// Placeholder is shown by hosts while the content is empty.
	Placeholder string

	// Change receives the content when an edit session ends: focus leaves the
	// widget for longer than BlurCommitDelay, or fullscreen collapses with
	// modified content.
	Change func(html string)
	// OnEnter runs on Enter key-up inside the surface.
	OnEnter func(KeyEvent)
	// OnPaste intercepts a paste. Non-empty content is inserted verbatim and
	// the paste ends there.
	OnPaste func(PasteEvent) string
	// AfterPaste runs once paste post-processing is done.
	AfterPaste func(PasteEvent)
	// OnValidFile runs after a file is attached.
	OnValidFile func()
	// OnInvalidFile runs after a file is rejected.
	OnInvalidFile func()

	// Extensions is the attachment allow-list, with leading dots.
	Extensions []string
	// SizeDecimals is the number of fraction digits in attachment sizes.
	// Zero means 2; negative shows whole units.
	SizeDecimals int
	// FileUpload enables drag and drop attachments and the files panel.
	FileUpload bool
	// SanitizePaste reduces pasted HTML to plain text.
	SanitizePaste bool
	// UploadOnPaste attaches pasted images when no Uploader is configured.
	UploadOnPaste bool
	// MetaURL is the metadata lookup endpoint used when Metadata is nil.
	MetaURL string
	// ImageURL is the image upload endpoint used when Uploader is nil.
	ImageURL string

	// ToolbarOptions lists toolbar controls in order. Empty means
	// DefaultToolbar.
	ToolbarOptions []ToolbarOption
	// Minimal replaces the toolbar with MinimalToolbar plus the custom
	// options and disables CanTab.
	Minimal bool
	// CanTab makes Tab indent and Shift+Tab outdent.
	CanTab bool
	// FontNames lists the font popup choices. Empty means DefaultFontNames.
	FontNames []string

	// Capabilities describes the formatting support of the environment.
	Capabilities Capabilities
	// Scheduler runs deferred callbacks. Nil means a new Loop, reachable
	// through Controller.Scheduler.
	Scheduler Scheduler
	// Layout provides popup geometry. Nil places every popup at offset 0.
	Layout Layout
	// Metadata looks up link previews. Nil uses a remote.Client when MetaURL
	// is set.
	Metadata MetadataFetcher
	// Uploader stores pasted images. Nil uses a remote.Client when ImageURL
	// is set.
	Uploader ImageUploader
	// PickFiles asks the host for files; the host passes them to attach.
	PickFiles func(attach func([]File))
	// OpenURL opens a link in a new window on Ctrl+click.
	OpenURL func(url string)

	// MaxPasteImageWidth downscales wider pasted images. Zero keeps them.
	MaxPasteImageWidth int
	// BlurCommitDelay defers the change notification after blur.
	BlurCommitDelay time.Duration
	// Logger receives swallowed failures. Nil discards them.
	Logger *slog.Logger
}

// ToolbarOption is a built-in command name or a custom control.
type ToolbarOption struct {
	// Name is the command name, or the id of a custom control.
	Name string
	// Title is the tooltip text; built-ins get one derived from the name.
	Title string
	// Handler makes the option custom: clicking it calls Handler.
	Handler func(*Controller)
}

// Option returns the built-in toolbar option for cmd.
func Option(cmd Command) ToolbarOption { return ToolbarOption{Name: string(cmd)} }

// Options returns built-in toolbar options for cmds.
func Options(cmds ...Command) []ToolbarOption {
	opts := make([]ToolbarOption, 0, len(cmds))
	for _, cmd := range cmds {
		opts = append(opts, Option(cmd))
	}
	return opts
}

const (
	defaultBlurCommitDelay = 500 * time.Millisecond
	defaultSizeDecimals    = 2
)

var (
	// DefaultExtensions is the attachment allow-list used when none is
	// configured.
	DefaultExtensions = []string{
		".bmp", ".csv", ".doc", ".docx", ".gif", ".jpeg", ".jpg", ".json",
		".md", ".mp3", ".mp4", ".odt", ".pdf", ".png", ".ppt", ".pptx",
		".rtf", ".svg", ".txt", ".webp", ".xls", ".xlsx", ".xml", ".zip",
	}

	// DefaultFontNames are the font popup choices used when none are
	// configured.
	DefaultFontNames = []string{"Arial", "Courier New", "Georgia", "Tahoma", "Times New Roman", "Verdana"}

	// DefaultToolbar is the toolbar used when no options are configured.
	DefaultToolbar = []Command{
		Bold, Italic, Underline, Strikethrough,
		FontName, FontSize, FontFormat, ForeColor, HiliteColor, RemoveFormat,
		InsertOrderedList, InsertUnorderedList,
		JustifyLeft, JustifyCenter, JustifyRight, JustifyFull,
		Indent, Outdent,
		Link, Image, Table, Attachment, HTML, Fullscreen,
	}

	// MinimalToolbar is the toolbar of a Minimal controller, before custom
	// options.
	MinimalToolbar = []Command{Bold, Italic, Underline, InsertUnorderedList, Attachment, Link}
)

func normalizeConfig(cfg Config) Config {
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultExtensions
	}
	if len(cfg.FontNames) == 0 {
		cfg.FontNames = DefaultFontNames
	}
	switch {
	case cfg.SizeDecimals == 0:
		cfg.SizeDecimals = defaultSizeDecimals
	case cfg.SizeDecimals < 0:
		cfg.SizeDecimals = 0
	}
	if cfg.BlurCommitDelay <= 0 {
		cfg.BlurCommitDelay = defaultBlurCommitDelay
	}
	if cfg.MaxPasteImageWidth < 0 {
		cfg.MaxPasteImageWidth = 0
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = NewLoop()
	}
	cfg.ToolbarOptions = normalizeToolbarOptions(cfg.ToolbarOptions, cfg.Minimal)
	if cfg.Minimal {
		cfg.CanTab = false
	}
	needMeta := cfg.Metadata == nil && cfg.MetaURL != ""
	needUpload := cfg.Uploader == nil && cfg.ImageURL != ""
	if needMeta || needUpload {
		cl := remote.New(remote.Config{MetaURL: cfg.MetaURL, ImageURL: cfg.ImageURL, Logger: cfg.Logger})
		if needMeta {
			cfg.Metadata = cl
		}
		if needUpload {
			cfg.Uploader = cl
		}
	}
	return cfg
}

func normalizeToolbarOptions(opts []ToolbarOption, minimal bool) []ToolbarOption {
	if len(opts) == 0 {
		opts = Options(DefaultToolbar...)
	}
	if !minimal {
		return opts
	}
	out := Options(MinimalToolbar...)
	for _, o := range opts {
		if o.Handler != nil {
			out = append(out, o)
		}
	}
	return out
}
