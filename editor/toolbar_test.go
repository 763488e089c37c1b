package editor

import (
	"errors"
	"testing"

	"golang.org/x/net/html"

	"github.com/iw2rmb/plume/surface"
)

func control(t *testing.T, c *Controller, cmd Command) ToolbarControl {
	t.Helper()
	for _, ctl := range c.Toolbar() {
		if ctl.Command == cmd {
			return ctl
		}
	}
	t.Fatalf("control %q not in toolbar", cmd)
	return ToolbarControl{}
}

func TestToolbar_Default(t *testing.T) {
	c, _ := newTestController(t, Config{})
	bar := c.Toolbar()
	if len(bar) != len(DefaultToolbar) {
		t.Fatalf("controls: got %d, want %d", len(bar), len(DefaultToolbar))
	}
	titles := map[Command]string{
		Bold:                "Bold",
		RemoveFormat:        "Clear Format",
		HiliteColor:         "Background Color",
		InsertUnorderedList: "Insert Unordered List",
		HTML:                "HTML",
	}
	for cmd, want := range titles {
		if got := control(t, c, cmd).Title; got != want {
			t.Fatalf("title of %s: got %q, want %q", cmd, got, want)
		}
	}
	if ctl := control(t, c, FontSize); ctl.Kind != ControlSelection || ctl.Value != inheritedSize {
		t.Fatalf("fontSize control: got %+v", ctl)
	}
	if ctl := control(t, c, ForeColor); ctl.Kind != ControlPicker || ctl.Value != "#000" {
		t.Fatalf("foreColor control: got %+v", ctl)
	}
}

func TestToolbar_MinimalKeepsCustomOptions(t *testing.T) {
	called := 0
	c, _ := newTestController(t, Config{
		Minimal: true,
		CanTab:  true,
		ToolbarOptions: []ToolbarOption{
			Option(Table),
			{Name: "sendNow", Handler: func(*Controller) { called++ }},
		},
	})
	bar := c.Toolbar()
	if len(bar) != len(MinimalToolbar)+1 {
		t.Fatalf("controls: got %d, want %d", len(bar), len(MinimalToolbar)+1)
	}
	last := bar[len(bar)-1]
	if last.ID != "sendNow" || !last.Custom || last.Title != "Send Now" {
		t.Fatalf("custom control: got %+v", last)
	}
	if err := c.Activate("sendNow"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if called != 1 {
		t.Fatalf("handler calls: got %d, want 1", called)
	}
	if c.cfg.CanTab {
		t.Fatalf("minimal controller kept CanTab")
	}
	if _, ok := c.Popup(string(Table)); ok {
		t.Fatalf("minimal toolbar built a table popup")
	}
}

func TestToolbar_SkipsUnknownAndDuplicates(t *testing.T) {
	c, _ := newTestController(t, Config{ToolbarOptions: []ToolbarOption{
		Option(Bold), {Name: "blink"}, Option(Bold), Option(Italic),
	}})
	bar := c.Toolbar()
	if len(bar) != 2 || bar[0].Command != Bold || bar[1].Command != Italic {
		t.Fatalf("controls: got %+v", bar)
	}
	if err := c.Activate("blink"); !errors.Is(err, ErrUnknownControl) {
		t.Fatalf("activate unknown: got %v, want %v", err, ErrUnknownControl)
	}
}

func TestToolbar_RefreshValues(t *testing.T) {
	c, _ := newTestController(t, Config{Value: `<h2><font face="Georgia, serif" size="5" color="#f00">ab</font></h2><p>cd</p>`})
	c.SetFocus(FocusSurface)

	selectText(t, c, "ab", 1, 1)
	c.Click(ClickEvent{})
	if got := control(t, c, FontName).Value; got != "Georgia" {
		t.Fatalf("font name: got %q, want %q", got, "Georgia")
	}
	if got := control(t, c, FontSize).Value; got != "X-Large" {
		t.Fatalf("font size: got %q, want %q", got, "X-Large")
	}
	if got := control(t, c, FontFormat).Value; got != "Heading 2" {
		t.Fatalf("format: got %q, want %q", got, "Heading 2")
	}
	if got := control(t, c, ForeColor).Value; got != "#f00" {
		t.Fatalf("color: got %q, want %q", got, "#f00")
	}

	selectText(t, c, "cd", 1, 1)
	c.Click(ClickEvent{})
	if got := control(t, c, FontName).Value; got != inheritedFont {
		t.Fatalf("font name: got %q, want %q", got, inheritedFont)
	}
	if got := control(t, c, FontSize).Value; got != inheritedSize {
		t.Fatalf("font size: got %q, want %q", got, inheritedSize)
	}
	if got := control(t, c, ForeColor).Value; got != "#000" {
		t.Fatalf("color: got %q, want %q", got, "#000")
	}
}

func TestUnsupportedCommandsAreDropped(t *testing.T) {
	c, _ := newTestController(t, Config{
		Value:        "<p>ab</p>",
		Capabilities: Capabilities{Unsupported: []Command{Underline}},
	})
	c.SetFocus(FocusSurface)
	selectText(t, c, "ab", 0, 2)
	c.Execute(Underline, "")
	if got, want := c.Surface().HTML(), "<p>ab</p>"; got != want {
		t.Fatalf("html: got %q, want %q", got, want)
	}
}

func TestStyleWithCSS(t *testing.T) {
	c, _ := newTestController(t, Config{
		Value:        "<p>ab</p>",
		Capabilities: Capabilities{StyleWithCSS: true},
	})
	c.SetFocus(FocusSurface)
	selectText(t, c, "ab", 0, 2)
	c.Execute(Bold, "")
	if got, want := c.Surface().HTML(), `<p><span style="font-weight: bold;">ab</span></p>`; got != want {
		t.Fatalf("html: got %q, want %q", got, want)
	}
}

func TestDenormalizeCamel(t *testing.T) {
	cases := map[string]string{
		"bold":              "Bold",
		"insertOrderedList": "Insert Ordered List",
		"justifyFull":       "Justify Full",
		"":                  "",
	}
	for in, want := range cases {
		if got := denormalizeCamel(in); got != want {
			t.Fatalf("denormalizeCamel(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestReconcile_FocusDropsUnshownFormatting(t *testing.T) {
	c, sched := newTestController(t, Config{Value: "<p><b>abc</b></p>"})
	selectText(t, c, "abc", 3, 3)
	if control(t, c, Bold).Active {
		t.Fatalf("bold control active before focus")
	}

	c.SetFocus(FocusSurface)
	typeText(c, "x")
	sched.Flush()

	x := findText(t, c, "x")
	if b := surface.Closest(x, c.Surface().Root(), func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "b"
	}); b != nil {
		t.Fatalf("typed text is bold: %q", c.Surface().HTML())
	}
	if got := findText(t, c, "abc"); got.Parent.Data != "b" {
		t.Fatalf("existing bold text lost its formatting: %q", c.Surface().HTML())
	}
}

func TestReconcile_FocusKeepsList(t *testing.T) {
	in := "<ul><li>x</li></ul>"
	c, sched := newTestController(t, Config{Value: in})
	selectText(t, c, "x", 1, 1)
	if control(t, c, InsertUnorderedList).Active {
		t.Fatalf("list control active before focus")
	}

	c.SetFocus(FocusSurface)
	sched.Flush()
	if got := c.Surface().HTML(); got != in {
		t.Fatalf("html after focus: got %q, want %q", got, in)
	}
}
