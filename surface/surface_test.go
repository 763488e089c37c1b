package surface

import (
	"errors"
	"testing"

	"golang.org/x/net/html"
)

func findText(t *testing.T, s *Surface, data string) *html.Node {
	t.Helper()
	var found *html.Node
	Walk(s.Root(), func(n *html.Node) bool {
		if found == nil && n.Type == html.TextNode && n.Data == data {
			found = n
		}
		return found != nil
	})
	if found == nil {
		t.Fatalf("text node %q not found in %q", data, s.HTML())
	}
	return found
}

func selectText(t *testing.T, s *Surface, data string, from, to int) {
	t.Helper()
	n := findText(t, s, data)
	if err := s.SetSelection(Range{Start: Point{Node: n, Offset: from}, End: Point{Node: n, Offset: to}}); err != nil {
		t.Fatalf("set selection: %v", err)
	}
}

func TestSetHTML_RoundTrip(t *testing.T) {
	in := `<p>Hello <b>world</b></p><ul><li>one</li></ul>`
	s := New(in)
	if got := s.HTML(); got != in {
		t.Fatalf("html: got %q, want %q", got, in)
	}
	if got, want := s.Text(), "Hello worldone"; got != want {
		t.Fatalf("text: got %q, want %q", got, want)
	}
}

func TestVersion_BumpsOnChange(t *testing.T) {
	s := New("<p>a</p>")
	v := s.Version()
	s.Focus()
	if s.Version() == v {
		t.Fatalf("version did not change on focus")
	}
	v = s.Version()
	if err := s.InsertText("b"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if s.Version() == v {
		t.Fatalf("version did not change on insert")
	}
}

func TestFocus_PlacesCaretAtEnd(t *testing.T) {
	s := New("<p>ab</p>")
	s.Focus()
	r, ok := s.Selection()
	if !ok || !r.Collapsed() {
		t.Fatalf("selection after focus: got %v %v", r, ok)
	}
	if r.Start.Node.Data != "ab" || r.Start.Offset != 2 {
		t.Fatalf("caret: got %q@%d, want \"ab\"@2", r.Start.Node.Data, r.Start.Offset)
	}
}

func TestSetSelection_DetachedFails(t *testing.T) {
	s := New("<p>ab</p>")
	n := findText(t, s, "ab")
	_ = s.SetHTML("<p>cd</p>")
	err := s.SetSelection(Caret(Point{Node: n}))
	if !errors.Is(err, ErrDetached) {
		t.Fatalf("err: got %v, want %v", err, ErrDetached)
	}
}

func TestExec_NoSelection(t *testing.T) {
	s := New("<p>ab</p>")
	if err := s.Exec(Bold, "", Markup); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("err: got %v, want %v", err, ErrNoSelection)
	}
}

func TestExec_Unsupported(t *testing.T) {
	s := New("<p>ab</p>")
	s.Focus()
	if err := s.Exec(Command("spellcheck"), "", Markup); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err: got %v, want %v", err, ErrUnsupported)
	}
}

func TestRangeText(t *testing.T) {
	s := New("<p>Hello <b>world</b></p>")
	start := findText(t, s, "Hello ")
	end := findText(t, s, "world")
	r := Range{Start: Point{Node: start, Offset: 2}, End: Point{Node: end, Offset: 3}}
	if got, want := s.RangeText(r), "llo wor"; got != want {
		t.Fatalf("range text: got %q, want %q", got, want)
	}
}

func TestCompare_DocumentOrder(t *testing.T) {
	s := New("<p>ab</p><p>cd</p>")
	a := findText(t, s, "ab")
	c := findText(t, s, "cd")
	if Compare(Point{Node: a, Offset: 2}, Point{Node: c}) >= 0 {
		t.Fatalf("end of first paragraph must precede start of second")
	}
	if Compare(Point{Node: s.Root()}, Point{Node: a}) >= 0 {
		t.Fatalf("body start must precede first text")
	}
	if Compare(Before(a.Parent), Point{Node: a}) >= 0 {
		t.Fatalf("point before paragraph must precede its text")
	}
}
