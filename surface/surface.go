package surface

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/iw2rmb/plume/internal/grapheme"
)

// Surface is the editable document state: content tree, selection, focus,
// and the typing style armed by collapsed formatting commands.
type Surface struct {
	root *html.Node

	anchor, focus Point
	hasSel        bool
	focused       bool

	version  uint64
	typing   []typingStyle
	inserted []*html.Node
}

// New returns a surface holding content. Content that fails to parse leaves
// the surface empty.
func New(content string) *Surface {
	s := &Surface{root: NewElement("body")}
	_ = s.SetHTML(content)
	return s
}

// Root returns the body element holding the content.
func (s *Surface) Root() *html.Node { return s.root }

// Version increases on every content or selection change.
func (s *Surface) Version() uint64 { return s.version }

func (s *Surface) bump() { s.version++ }

// Touch records a change made directly on nodes returned by the surface.
func (s *Surface) Touch() { s.bump() }

// HTML renders the content as markup.
func (s *Surface) HTML() string {
	var sb strings.Builder
	for c := s.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.CommentNode {
			continue
		}
		_ = html.Render(&sb, c)
	}
	return sb.String()
}

// SetHTML replaces the content and drops the selection.
func (s *Surface) SetHTML(content string) error {
	nodes, err := parseFragment(content)
	if err != nil {
		return fmt.Errorf("parse content: %w", err)
	}
	s.clear()
	for _, n := range nodes {
		s.root.AppendChild(n)
	}
	return nil
}

// SetText replaces the content with a single text node.
func (s *Surface) SetText(text string) {
	s.clear()
	if text != "" {
		s.root.AppendChild(NewText(text))
	}
}

func (s *Surface) clear() {
	for c := s.root.FirstChild; c != nil; c = s.root.FirstChild {
		s.root.RemoveChild(c)
	}
	s.hasSel = false
	s.typing = nil
	s.inserted = nil
	s.bump()
}

func parseFragment(content string) ([]*html.Node, error) {
	if content == "" {
		return nil, nil
	}
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	return html.ParseFragment(strings.NewReader(content), ctx)
}

// Text returns the text content of the document.
func (s *Surface) Text() string { return TextContent(s.root) }

// HasImages reports whether the document contains an <img>.
func (s *Surface) HasImages() bool {
	found := false
	Walk(s.root, func(n *html.Node) bool {
		if isElement(n, atom.Img) {
			found = true
		}
		return found
	})
	return found
}

// Focused reports whether the surface holds input focus.
func (s *Surface) Focused() bool { return s.focused }

// Focus gives the surface input focus. A surface without a selection gets a
// caret at the end of the document.
func (s *Surface) Focus() {
	if s.focused {
		return
	}
	s.focused = true
	if !s.hasSel {
		s.setCaret(s.endPoint())
	}
	s.bump()
}

// Blur removes input focus; the selection is kept.
func (s *Surface) Blur() {
	if !s.focused {
		return
	}
	s.focused = false
	s.bump()
}

// Contains reports whether n is part of the document.
func (s *Surface) Contains(n *html.Node) bool {
	return n != nil && isAncestor(s.root, n)
}

// Selection returns the current selection in document order.
func (s *Surface) Selection() (Range, bool) {
	if !s.hasSel {
		return Range{}, false
	}
	if !s.Contains(s.anchor.Node) || !s.Contains(s.focus.Node) {
		return Range{}, false
	}
	return Range{Start: clampPoint(s.anchor), End: clampPoint(s.focus)}.Normalize(), true
}

// Head returns the selection focus: the end that moves when a selection is
// extended, where hosts draw the caret.
func (s *Surface) Head() (Point, bool) {
	if !s.hasSel || !s.Contains(s.focus.Node) {
		return Point{}, false
	}
	return clampPoint(s.focus), true
}

// SetSelection installs r. A different selection discards the armed typing
// style.
func (s *Surface) SetSelection(r Range) error {
	if !s.Contains(r.Start.Node) || !s.Contains(r.End.Node) {
		return ErrDetached
	}
	r.Start, r.End = clampPoint(r.Start), clampPoint(r.End)
	if cur, ok := s.Selection(); !ok || cur != r.Normalize() {
		s.typing = nil
	}
	s.anchor, s.focus, s.hasSel = r.Start, r.End, true
	s.bump()
	return nil
}

// ClearSelection removes the selection.
func (s *Surface) ClearSelection() {
	if !s.hasSel {
		return
	}
	s.hasSel = false
	s.typing = nil
	s.bump()
}

// SelectNodeContents selects everything inside n.
func (s *Surface) SelectNodeContents(n *html.Node) error {
	return s.SetSelection(Range{Start: Point{Node: n}, End: Point{Node: n, Offset: maxOffset(n)}})
}

// CollapseAfter places the caret immediately after n.
func (s *Surface) CollapseAfter(n *html.Node) error {
	if !s.Contains(n) || n == s.root {
		return ErrDetached
	}
	return s.SetSelection(Caret(normalizeCaret(After(n))))
}

// Collapse collapses the selection to its start or end.
func (s *Surface) Collapse(toStart bool) {
	r, ok := s.Selection()
	if !ok {
		return
	}
	p := r.End
	if toStart {
		p = r.Start
	}
	s.setCaret(p)
	s.bump()
}

// Inserted returns the nodes created by the last insertion primitive
// (insertHTML, insertImage, createLink, InsertHTML).
func (s *Surface) Inserted() []*html.Node { return s.inserted }

func (s *Surface) setCaret(p Point) {
	s.anchor, s.focus, s.hasSel = p, p, true
}

func (s *Surface) setRange(start, end Point) {
	s.anchor, s.focus, s.hasSel = start, end, true
}

func (s *Surface) endPoint() Point {
	lines := s.Lines()
	stops := lines[len(lines)-1].Stops()
	return stops[len(stops)-1]
}

// repairSelection moves a selection whose anchors were detached by an edit
// to the start of fallback.
func (s *Surface) repairSelection(fallback *html.Node) {
	if !s.hasSel {
		return
	}
	if s.Contains(s.anchor.Node) && s.Contains(s.focus.Node) {
		return
	}
	if fallback == nil || !s.Contains(fallback) {
		fallback = s.root
	}
	s.setCaret(firstCaret(fallback))
}

// firstCaret returns the first caret position inside n.
func firstCaret(n *html.Node) Point {
	for _, t := range textNodes(n) {
		return Point{Node: t}
	}
	return Point{Node: n}
}

// SetAttr sets an attribute on a document node.
func (s *Surface) SetAttr(n *html.Node, key, val string) {
	setAttr(n, key, val)
	s.bump()
}

// SetStyle sets an inline CSS property on a document node.
func (s *Surface) SetStyle(n *html.Node, prop, val string) {
	setStyle(n, prop, val)
	s.bump()
}

// Rename changes the tag of an element, keeping attributes and children.
func (s *Surface) Rename(n *html.Node, tag string) {
	rename(n, strings.ToLower(tag))
	s.bump()
}

// ReplaceWithText replaces n by a text node holding its text content and
// returns that node.
func (s *Surface) ReplaceWithText(n *html.Node) *html.Node {
	t := NewText(TextContent(n))
	n.Parent.InsertBefore(t, n)
	n.Parent.RemoveChild(n)
	s.repairSelection(t)
	s.bump()
	return t
}

// ReplaceChildrenWithText replaces the children of n by a single text node.
func (s *Surface) ReplaceChildrenWithText(n *html.Node) *html.Node {
	t := NewText(TextContent(n))
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
	n.AppendChild(t)
	s.repairSelection(t)
	s.bump()
	return t
}

// SetNodeText replaces the children of n by text.
func (s *Surface) SetNodeText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
	t := NewText(text)
	n.AppendChild(t)
	s.repairSelection(t)
	s.bump()
}

// Remove detaches n from the document.
func (s *Surface) Remove(n *html.Node) {
	if n.Parent == nil {
		return
	}
	parent := n.Parent
	parent.RemoveChild(n)
	s.repairSelection(parent)
	s.bump()
}

// WrapText wraps the clusters [from, to) of text node t in el and returns the
// text node now inside el. Selection points inside t follow the text.
func (s *Surface) WrapText(t *html.Node, from, to int, el *html.Node) *html.Node {
	if to < grapheme.Count(t.Data) {
		s.remapSplit(t, to, splitText(t, to))
	}
	if from > 0 {
		mid := splitText(t, from)
		s.remapSplit(t, from, mid)
		t = mid
	}
	wrap(t, el)
	s.bump()
	return t
}

func (s *Surface) remapSplit(t *html.Node, off int, next *html.Node) {
	for _, p := range []*Point{&s.anchor, &s.focus} {
		if p.Node == t && p.Offset > off {
			*p = Point{Node: next, Offset: p.Offset - off}
		}
	}
}
