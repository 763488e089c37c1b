package editor

import (
	"io"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Named keys. Any other Key value is text typed by the user.
const (
	KeyEnter     = "Enter"
	KeyTab       = "Tab"
	KeyBackspace = "Backspace"
	KeyDelete    = "Delete"
	KeyEscape    = "Escape"
	KeySpace     = " "
	KeyLeft      = "ArrowLeft"
	KeyRight     = "ArrowRight"
	KeyUp        = "ArrowUp"
	KeyDown      = "ArrowDown"
	KeyHome      = "Home"
	KeyEnd       = "End"
)

var namedKeys = map[string]bool{
	KeyEnter: true, KeyTab: true, KeyBackspace: true, KeyDelete: true, KeyEscape: true,
	KeyLeft: true, KeyRight: true, KeyUp: true, KeyDown: true, KeyHome: true, KeyEnd: true,
}

// KeyEvent is a key press or release.
type KeyEvent struct {
	Key   string
	Shift bool
	Ctrl  bool
	Alt   bool
}

// Text returns the text the key types, if any.
func (ev KeyEvent) Text() (string, bool) {
	if ev.Ctrl || ev.Alt || ev.Key == "" || namedKeys[ev.Key] || !utf8.ValidString(ev.Key) {
		return "", false
	}
	return ev.Key, true
}

// FocusTarget is the part of the page holding input focus.
type FocusTarget uint8

const (
	// FocusOutside is anything the widget does not own.
	FocusOutside FocusTarget = iota
	FocusSurface
	FocusToolbar
	FocusPopup
	// FocusPanel is widget chrome such as the attachment and metadata panels.
	FocusPanel
)

func (f FocusTarget) String() string {
	switch f {
	case FocusSurface:
		return "surface"
	case FocusToolbar:
		return "toolbar"
	case FocusPopup:
		return "popup"
	case FocusPanel:
		return "panel"
	default:
		return "outside"
	}
}

// ClickEvent is a pointer click inside the surface. Node is the node under
// the pointer, when known.
type ClickEvent struct {
	Node *html.Node
	Ctrl bool
}

// PasteEvent is a clipboard payload.
type PasteEvent struct {
	Text string
	HTML string
	// Image holds encoded image bytes from a pasted file.
	Image []byte
	// ImageType is the MIME type of Image.
	ImageType string
}

// File is a file offered for attachment.
type File struct {
	Name   string
	Size   int64
	Handle io.Reader
}
