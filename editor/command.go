package editor

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/iw2rmb/plume/surface"
)

// Command names a toolbar command.
type Command string

// Formatting commands backed by surface primitives.
const (
	Bold                = Command(surface.Bold)
	Italic              = Command(surface.Italic)
	Underline           = Command(surface.Underline)
	Strikethrough       = Command(surface.Strikethrough)
	ForeColor           = Command(surface.ForeColor)
	HiliteColor         = Command(surface.HiliteColor)
	FontName            = Command(surface.FontName)
	FontSize            = Command(surface.FontSize)
	FormatBlock         = Command(surface.FormatBlock)
	RemoveFormat        = Command(surface.RemoveFormat)
	Indent              = Command(surface.Indent)
	Outdent             = Command(surface.Outdent)
	InsertOrderedList   = Command(surface.InsertOrderedList)
	InsertUnorderedList = Command(surface.InsertUnorderedList)
	JustifyLeft         = Command(surface.JustifyLeft)
	JustifyCenter       = Command(surface.JustifyCenter)
	JustifyRight        = Command(surface.JustifyRight)
	JustifyFull         = Command(surface.JustifyFull)
	InsertHTML          = Command(surface.InsertHTML)
	InsertImage         = Command(surface.InsertImage)
	CreateLink          = Command(surface.CreateLink)
)

// Widget commands handled by the controller.
const (
	FontFormat Command = "fontFormat"
	Link       Command = "link"
	Image      Command = "image"
	Table      Command = "table"
	Attachment Command = "attachment"
	HTML       Command = "html"
	Fullscreen Command = "fullscreen"
)

var nativeCommands = []Command{
	Bold, Italic, Underline, Strikethrough,
	ForeColor, HiliteColor, FontName, FontSize,
	FormatBlock, RemoveFormat, Indent, Outdent,
	InsertOrderedList, InsertUnorderedList,
	JustifyLeft, JustifyCenter, JustifyRight, JustifyFull,
	InsertHTML, InsertImage, CreateLink,
}

var toggleCommands = []Command{Bold, Italic, Underline, Strikethrough}

func isToggle(cmd Command) bool { return slices.Contains(toggleCommands, cmd) }

func isListInsertion(cmd Command) bool {
	return cmd == InsertOrderedList || cmd == InsertUnorderedList
}

// syncExempt reports commands left out of automatic toolbar sync.
func syncExempt(cmd Command) bool {
	name := strings.ToLower(string(cmd))
	return strings.Contains(name, "list") || strings.Contains(name, "justify")
}

// Capabilities describes what the environment's formatting primitives
// support.
type Capabilities struct {
	// StyleWithCSS writes formatting as CSS spans instead of markup tags.
	StyleWithCSS bool
	// Styled forces the styled dialect for individual commands.
	Styled []Command
	// Unsupported lists commands the environment cannot execute. They are
	// dropped without notice.
	Unsupported []Command
}

type capability struct {
	dialect surface.Dialect
}

// capabilityTable maps each executable command to its dialect. It is built
// once per controller.
type capabilityTable map[Command]capability

func newCapabilityTable(c Capabilities) capabilityTable {
	t := make(capabilityTable, len(nativeCommands))
	for _, cmd := range nativeCommands {
		if slices.Contains(c.Unsupported, cmd) {
			continue
		}
		d := surface.Markup
		if c.StyleWithCSS || slices.Contains(c.Styled, cmd) {
			d = surface.Styled
		}
		t[cmd] = capability{dialect: d}
	}
	return t
}

// executor runs native commands on the surface. Failures are logged and
// dropped so a failing primitive never interrupts the session.
type executor struct {
	surf *surface.Surface
	caps capabilityTable
	log  *slog.Logger
}

func (x *executor) supported(cmd Command) bool {
	_, ok := x.caps[cmd]
	return ok
}

// run executes cmd and reports whether it applied.
func (x *executor) run(cmd Command, value string) bool {
	c, ok := x.caps[cmd]
	if !ok {
		x.log.Debug("Skip unsupported command", "command", cmd)
		return false
	}
	if err := x.surf.Exec(surface.Command(cmd), value, c.dialect); err != nil {
		level := slog.LevelWarn
		if errors.Is(err, surface.ErrNoSelection) || errors.Is(err, surface.ErrUnsupported) {
			level = slog.LevelDebug
		}
		x.log.Log(context.Background(), level, "Execute command", "command", cmd, "value", value, "err", err)
		return false
	}
	return true
}

func (x *executor) queryable(cmd Command) bool {
	return x.supported(cmd) && surface.Queryable(surface.Command(cmd))
}

func (x *executor) state(cmd Command) bool {
	if !x.supported(cmd) {
		return false
	}
	return x.surf.QueryState(surface.Command(cmd))
}

func (x *executor) value(cmd Command) string {
	if !x.supported(cmd) {
		return ""
	}
	return x.surf.QueryValue(surface.Command(cmd))
}
