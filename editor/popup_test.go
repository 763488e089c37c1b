package editor

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

type fixedLayout struct {
	offsets map[string]int
	width   int
	surface int
}

func (l fixedLayout) ControlOffset(id string) int { return l.offsets[id] }
func (l fixedLayout) PopupWidth(string) int       { return l.width }
func (l fixedLayout) SurfaceWidth() int           { return l.surface }

func newTestPopups(layout Layout) *popupController {
	pc := newPopupController(layout, slog.New(slog.NewTextHandler(io.Discard, nil)))
	for _, id := range []string{"a", "b"} {
		pc.add(popupSpec{id: id, fields: []Field{{Name: "v", Default: "x", Required: true}}})
	}
	pc.add(popupSpec{id: "side", group: "panel"})
	return pc
}

func TestPopups_OneOpenPerGroup(t *testing.T) {
	pc := newTestPopups(nil)

	if err := pc.open("a"); err != nil {
		t.Fatalf("open a: %v", err)
	}
	if err := pc.open("side"); err != nil {
		t.Fatalf("open side: %v", err)
	}
	if err := pc.open("b"); err != nil {
		t.Fatalf("open b: %v", err)
	}
	if pc.isOpen("a") {
		t.Fatalf("a still open after opening b")
	}
	if !pc.isOpen("b") || !pc.isOpen("side") {
		t.Fatalf("b and side must stay open")
	}
	if _, ok := pc.scoped["a"]; ok {
		t.Fatalf("listeners of closed popup a still installed")
	}
}

func TestPopups_ToggleAndListeners(t *testing.T) {
	pc := newTestPopups(nil)

	if err := pc.toggle("a"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !pc.isOpen("a") || pc.global == nil || pc.outside == nil {
		t.Fatalf("open popup must install its listeners")
	}
	if err := pc.toggle("a"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if pc.isOpen("a") {
		t.Fatalf("a open after second toggle")
	}
	if len(pc.scoped) != 0 || pc.global != nil || pc.outside != nil {
		t.Fatalf("listeners left after closing the last popup")
	}
	if err := pc.toggle("nope"); !errors.Is(err, ErrUnknownPopup) {
		t.Fatalf("toggle unknown: got %v, want %v", err, ErrUnknownPopup)
	}
}

func TestPopups_EscapeAndEnter(t *testing.T) {
	pc := newTestPopups(nil)
	submitted := 0
	pc.popups[0].spec.submit = func(*popup) error { submitted++; return nil }

	_ = pc.open("a")
	if !pc.keyDown("a", KeyEvent{Key: KeyEnter}) {
		t.Fatalf("enter not handled")
	}
	if submitted != 1 || pc.isOpen("a") {
		t.Fatalf("enter: submitted=%d open=%v, want 1 false", submitted, pc.isOpen("a"))
	}

	_ = pc.open("a")
	if pc.keyDown("a", KeyEvent{Key: "q"}) {
		t.Fatalf("plain key handled")
	}
	if !pc.keyDown("a", KeyEvent{Key: KeyEscape}) || pc.isOpen("a") {
		t.Fatalf("escape did not close a")
	}
	if pc.keyDown("a", KeyEvent{Key: KeyEscape}) {
		t.Fatalf("closed popup still handles keys")
	}

	_ = pc.open("a")
	_ = pc.open("side")
	if !pc.globalKey(KeyEvent{Key: KeyEscape}) || pc.anyOpen() {
		t.Fatalf("global escape must close every popup")
	}
}

func TestPopups_SubmitValidates(t *testing.T) {
	pc := newTestPopups(nil)
	_ = pc.open("a")

	if err := pc.setField("a", "v", "  "); err != nil {
		t.Fatalf("set field: %v", err)
	}
	if err := pc.submit("a"); !errors.Is(err, ErrRequiredField) {
		t.Fatalf("submit: got %v, want %v", err, ErrRequiredField)
	}
	st, _ := pc.get("a")
	if !pc.isOpen("a") || !st.fields[0].Invalid {
		t.Fatalf("invalid submit must keep the popup open and flag the field")
	}

	if err := pc.setField("a", "missing", "x"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("set unknown field: got %v, want %v", err, ErrUnknownField)
	}
	_ = pc.setField("a", "v", "ok")
	if err := pc.submit("a"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := pc.submit("a"); !errors.Is(err, ErrPopupClosed) {
		t.Fatalf("submit closed: got %v, want %v", err, ErrPopupClosed)
	}
}

func TestPopups_FieldsResetOnOpen(t *testing.T) {
	pc := newTestPopups(nil)
	_ = pc.open("a")
	_ = pc.setField("a", "v", "changed")
	_ = pc.close("a")
	_ = pc.open("a")
	p, _ := pc.get("a")
	if got := p.value("v"); got != "x" {
		t.Fatalf("field after reopen: got %q, want %q", got, "x")
	}
}

func TestPopups_OffsetClampedToSurface(t *testing.T) {
	layout := fixedLayout{offsets: map[string]int{"a": 90, "b": 10}, width: 30, surface: 100}
	pc := newTestPopups(layout)

	_ = pc.open("a")
	if st, _ := pc.get("a"); st.offset != 70 {
		t.Fatalf("offset of a: got %d, want 70", st.offset)
	}
	_ = pc.open("b")
	if st, _ := pc.get("b"); st.offset != 10 {
		t.Fatalf("offset of b: got %d, want 10", st.offset)
	}

	wide := fixedLayout{offsets: map[string]int{"a": 5}, width: 300, surface: 100}
	pc = newTestPopups(wide)
	_ = pc.open("a")
	if st, _ := pc.get("a"); st.offset != 0 {
		t.Fatalf("offset of wide popup: got %d, want 0", st.offset)
	}
}

func TestPopups_ChooseSubmitsChoice(t *testing.T) {
	pc := newTestPopups(nil)
	var got string
	pc.add(popupSpec{
		id:      "pick",
		fields:  []Field{{Name: "v"}},
		choices: []Choice{{Label: "One", Value: "1"}, {Label: "Two", Value: "2"}},
		submit:  func(p *popup) error { got = p.value("v"); return nil },
	})
	_ = pc.open("pick")
	if err := pc.choose("pick", 1); err != nil {
		t.Fatalf("choose: %v", err)
	}
	if got != "2" || pc.isOpen("pick") {
		t.Fatalf("choose: value=%q open=%v, want \"2\" false", got, pc.isOpen("pick"))
	}
	_ = pc.open("pick")
	if err := pc.choose("pick", 5); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("choose out of range: got %v, want %v", err, ErrUnknownField)
	}
}
