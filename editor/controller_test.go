package editor

import (
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/iw2rmb/plume/surface"
)

func newTestController(t *testing.T, cfg Config) (*Controller, *fakeScheduler) {
	t.Helper()
	sched := &fakeScheduler{}
	cfg.Scheduler = sched
	c := New(cfg)
	t.Cleanup(func() {
		c.Close()
		c.inflight.Wait()
	})
	return c, sched
}

func findText(t *testing.T, c *Controller, data string) *html.Node {
	t.Helper()
	var found *html.Node
	surface.Walk(c.Surface().Root(), func(n *html.Node) bool {
		if found == nil && n.Type == html.TextNode && n.Data == data {
			found = n
		}
		return found != nil
	})
	if found == nil {
		t.Fatalf("text node %q not found in %q", data, c.Surface().HTML())
	}
	return found
}

func elements(c *Controller, tag string) []*html.Node {
	var out []*html.Node
	surface.Walk(c.Surface().Root(), func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		return false
	})
	return out
}

func selectText(t *testing.T, c *Controller, data string, from, to int) {
	t.Helper()
	n := findText(t, c, data)
	if err := c.Surface().SetSelection(surface.Range{Start: surface.Point{Node: n, Offset: from}, End: surface.Point{Node: n, Offset: to}}); err != nil {
		t.Fatalf("set selection: %v", err)
	}
}

func typeText(c *Controller, s string) {
	for _, r := range s {
		c.Key(KeyEvent{Key: string(r)})
	}
}

func TestContent_RoundTrip(t *testing.T) {
	in := "<p>Hello <b>world</b></p>"
	c, _ := newTestController(t, Config{Value: in})
	got, ok := c.Content()
	if !ok || got != in {
		t.Fatalf("content: got %q %v, want %q true", got, ok, in)
	}

	c.SetContent("")
	if got, ok := c.Content(); ok || got != "" {
		t.Fatalf("empty content: got %q %v, want \"\" false", got, ok)
	}
}

func TestContent_PrunesScripts(t *testing.T) {
	c, _ := newTestController(t, Config{Value: "<p>a</p><script>alert(1)</script>"})
	got, _ := c.Content()
	if got != "<p>a</p>" {
		t.Fatalf("content: got %q, want %q", got, "<p>a</p>")
	}
}

func TestContent_ImageOnlyIsNotEmpty(t *testing.T) {
	c, _ := newTestController(t, Config{Value: `<img src="x.png">`})
	if _, ok := c.Content(); !ok {
		t.Fatalf("image-only content reported empty")
	}
}

func TestBlurCommit(t *testing.T) {
	var changes []string
	c, sched := newTestController(t, Config{Value: "<p>a</p>", Change: func(s string) { changes = append(changes, s) }})

	c.SetFocus(FocusSurface)
	typeText(c, "x")
	c.SetFocus(FocusOutside)

	sched.Advance(499 * time.Millisecond)
	if len(changes) != 0 {
		t.Fatalf("change fired before delay: %v", changes)
	}
	sched.Advance(time.Millisecond)
	if len(changes) != 1 || changes[0] != "<p>ax</p>" {
		t.Fatalf("changes: got %q, want [\"<p>ax</p>\"]", changes)
	}

	// a new session starts on the next focus
	c.SetFocus(FocusSurface)
	c.SetFocus(FocusOutside)
	sched.Advance(time.Second)
	if len(changes) != 1 {
		t.Fatalf("unchanged session committed: %q", changes)
	}
}

func TestBlurCommit_RefocusCancels(t *testing.T) {
	var changes []string
	c, sched := newTestController(t, Config{Value: "<p>a</p>", Change: func(s string) { changes = append(changes, s) }})

	c.SetFocus(FocusSurface)
	typeText(c, "x")
	c.SetFocus(FocusOutside)
	sched.Advance(200 * time.Millisecond)
	c.SetFocus(FocusSurface)
	sched.Advance(time.Second)
	if len(changes) != 0 {
		t.Fatalf("change fired after refocus: %q", changes)
	}
}

func TestBlurCommit_SkippedWhileToolbarOrPopupHoldsFocus(t *testing.T) {
	var changes []string
	c, sched := newTestController(t, Config{Value: "<p>a</p>", Change: func(s string) { changes = append(changes, s) }})

	c.SetFocus(FocusSurface)
	typeText(c, "x")
	if err := c.Activate(string(Link)); err != nil {
		t.Fatalf("activate link: %v", err)
	}
	sched.Advance(time.Second)
	if len(changes) != 0 {
		t.Fatalf("change fired while the toolbar held focus: %q", changes)
	}

	// leaving the widget with a popup still open does not commit either
	c.SetFocus(FocusOutside)
	sched.Advance(time.Second)
	if len(changes) != 0 {
		t.Fatalf("change fired with an open popup: %q", changes)
	}

	c.ClickOutside()
	sched.Advance(time.Second)
	if len(changes) != 1 {
		t.Fatalf("changes after closing popups: got %q, want one", changes)
	}
}

func TestToggleFlow(t *testing.T) {
	c, _ := newTestController(t, Config{Value: "<p>ab</p>"})
	c.SetFocus(FocusSurface)
	selectText(t, c, "ab", 0, 2)

	if err := c.Activate(string(Bold)); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if got, want := c.Surface().HTML(), "<p><b>ab</b></p>"; got != want {
		t.Fatalf("html: got %q, want %q", got, want)
	}
	if !control(t, c, Bold).Active {
		t.Fatalf("bold control inactive after toggle on")
	}
	if c.Focus() != FocusSurface {
		t.Fatalf("focus: got %v, want surface", c.Focus())
	}

	if err := c.Activate(string(Bold)); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if got, want := c.Surface().HTML(), "<p>ab</p>"; got != want {
		t.Fatalf("html after toggle off: got %q, want %q", got, want)
	}
	if control(t, c, Bold).Active {
		t.Fatalf("bold control active after toggle off")
	}
}

func TestToggleFlow_CaretAppliesToTyping(t *testing.T) {
	c, _ := newTestController(t, Config{Value: "<p>ab</p>"})
	c.SetFocus(FocusSurface)
	selectText(t, c, "ab", 2, 2)

	if err := c.Activate(string(Italic)); err != nil {
		t.Fatalf("activate: %v", err)
	}
	typeText(c, "c")
	if got, want := c.Surface().HTML(), "<p>ab<i>c</i></p>"; got != want {
		t.Fatalf("html: got %q, want %q", got, want)
	}
}

func TestRecomputeOnClick(t *testing.T) {
	c, _ := newTestController(t, Config{Value: "<p><b>ab</b>cd</p>"})
	c.SetFocus(FocusSurface)

	selectText(t, c, "ab", 1, 1)
	c.Click(ClickEvent{})
	if !control(t, c, Bold).Active {
		t.Fatalf("bold inactive inside <b>")
	}

	selectText(t, c, "cd", 1, 1)
	c.Click(ClickEvent{})
	if control(t, c, Bold).Active {
		t.Fatalf("bold active outside <b>")
	}
}

func TestExecute_ListOnEmptySurfaceIsSynthesized(t *testing.T) {
	c, _ := newTestController(t, Config{})
	if err := c.Activate(string(InsertUnorderedList)); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if got, want := c.Surface().HTML(), "<ul><li></li></ul>"; got != want {
		t.Fatalf("html: got %q, want %q", got, want)
	}
	typeText(c, "a")
	if got, want := c.Surface().HTML(), "<ul><li>a</li></ul>"; got != want {
		t.Fatalf("html after typing: got %q, want %q", got, want)
	}
}

func TestExecute_ListToggleIsDeferred(t *testing.T) {
	c, sched := newTestController(t, Config{Value: "<p>one</p>"})
	c.SetFocus(FocusSurface)
	selectText(t, c, "one", 1, 1)

	c.Execute(InsertUnorderedList, "")
	if got, want := c.Surface().HTML(), "<p>one</p>"; got != want {
		t.Fatalf("html before flush: got %q, want %q", got, want)
	}
	sched.Flush()
	if got, want := c.Surface().HTML(), "<ul><li>one</li></ul>"; got != want {
		t.Fatalf("html after flush: got %q, want %q", got, want)
	}
}

func TestExecute_IndentLeavesNoBlockquote(t *testing.T) {
	c, _ := newTestController(t, Config{Value: "<p>x</p>"})
	c.SetFocus(FocusSurface)
	selectText(t, c, "x", 0, 0)

	c.Execute(Indent, "")
	if got, want := c.Surface().HTML(), `<div style="margin-left: 40px;"><p>x</p></div>`; got != want {
		t.Fatalf("html: got %q, want %q", got, want)
	}
	if n := len(elements(c, "blockquote")); n != 0 {
		t.Fatalf("blockquotes: got %d, want 0", n)
	}
}

func TestRemoveFormat_Heading(t *testing.T) {
	c, _ := newTestController(t, Config{Value: "<h1>Title</h1><p>x</p>"})
	c.SetFocus(FocusSurface)
	selectText(t, c, "Title", 0, 2)

	if err := c.Activate(string(RemoveFormat)); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if got, want := c.Surface().HTML(), "Title<p>x</p>"; got != want {
		t.Fatalf("html: got %q, want %q", got, want)
	}
	if got := c.Surface().SelectedText(); got != "Title" {
		t.Fatalf("selection: got %q, want %q", got, "Title")
	}

	if err := c.Activate(string(RemoveFormat)); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if got, want := c.Surface().Text(), "Titlex"; got != want {
		t.Fatalf("text after second pass: got %q, want %q", got, want)
	}
	if n := len(elements(c, "h1")); n != 0 {
		t.Fatalf("headings: got %d, want 0", n)
	}
}

func TestRemoveFormat_List(t *testing.T) {
	c, _ := newTestController(t, Config{Value: "<ul><li>one</li><li>two</li></ul>"})
	c.SetFocus(FocusSurface)
	start := findText(t, c, "one")
	end := findText(t, c, "two")
	if err := c.Surface().SetSelection(surface.Range{Start: surface.Point{Node: start}, End: surface.Point{Node: end, Offset: 3}}); err != nil {
		t.Fatalf("set selection: %v", err)
	}

	if err := c.Activate(string(RemoveFormat)); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if n := len(elements(c, "li")); n != 0 {
		t.Fatalf("list items: got %d, want 0 in %q", n, c.Surface().HTML())
	}
	if got, want := c.Surface().Text(), "onetwo"; got != want {
		t.Fatalf("text: got %q, want %q", got, want)
	}
}

func TestRemoveFormat_ClearsToggles(t *testing.T) {
	c, _ := newTestController(t, Config{Value: "<p><b><i>ab</i></b>c</p>"})
	c.SetFocus(FocusSurface)
	selectText(t, c, "ab", 0, 2)
	c.Click(ClickEvent{})
	if !control(t, c, Bold).Active || !control(t, c, Italic).Active {
		t.Fatalf("toggles not active before removeFormat")
	}

	if err := c.Activate(string(RemoveFormat)); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if got, want := c.Surface().HTML(), "<p>abc</p>"; got != want {
		t.Fatalf("html: got %q, want %q", got, want)
	}
	for _, cmd := range []Command{Bold, Italic} {
		if control(t, c, cmd).Active {
			t.Fatalf("%s still active", cmd)
		}
	}
}

func TestRawView(t *testing.T) {
	in := "<p><b>a</b></p>"
	c, _ := newTestController(t, Config{Value: in})

	if err := c.Activate(string(HTML)); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !c.RawView() {
		t.Fatalf("raw view off after toggle")
	}
	if got := c.Surface().Text(); got != in {
		t.Fatalf("raw source: got %q, want %q", got, in)
	}
	if got, _ := c.Content(); got != in {
		t.Fatalf("content in raw view: got %q, want %q", got, in)
	}

	// formatting controls are inert in the raw view
	if err := c.Activate(string(Italic)); err != nil {
		t.Fatalf("activate italic: %v", err)
	}
	if control(t, c, Italic).Active {
		t.Fatalf("italic toggled in raw view")
	}

	if err := c.Activate(string(HTML)); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if c.RawView() {
		t.Fatalf("raw view on after second toggle")
	}
	if got := c.Surface().HTML(); got != in {
		t.Fatalf("html after raw view: got %q, want %q", got, in)
	}
}

func TestFullscreen_CommitsOnCollapse(t *testing.T) {
	var changes []string
	c, sched := newTestController(t, Config{Value: "<p>a</p>", Change: func(s string) { changes = append(changes, s) }})

	if err := c.Activate(string(Fullscreen)); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !c.Expanded() {
		t.Fatalf("not expanded")
	}
	c.SetFocus(FocusSurface)
	typeText(c, "z")
	if err := c.Activate(string(Fullscreen)); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if c.Expanded() {
		t.Fatalf("still expanded")
	}
	if len(changes) != 1 || changes[0] != "<p>az</p>" {
		t.Fatalf("changes: got %q, want [\"<p>az</p>\"]", changes)
	}
	sched.Advance(time.Second)
	if len(changes) != 1 {
		t.Fatalf("changes after delay: got %q", changes)
	}
}

func TestFullscreen_UnchangedDoesNotCommit(t *testing.T) {
	var changes []string
	c, _ := newTestController(t, Config{Value: "<p>a</p>", Change: func(s string) { changes = append(changes, s) }})
	_ = c.Activate(string(Fullscreen))
	_ = c.Activate(string(Fullscreen))
	if len(changes) != 0 {
		t.Fatalf("changes: got %q, want none", changes)
	}
}
