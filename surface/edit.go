package surface

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/iw2rmb/plume/internal/grapheme"
)

const markerData = "plume:caret"

// splitRange splits text nodes at both ends of r so that each end falls
// between nodes.
func splitRange(r Range) (start, end boundary) {
	r = r.Normalize()
	end = toBoundary(r.End)
	start = toBoundary(r.Start)
	return start, end
}

// textsIn returns the non-empty text nodes inside [start, end].
func textsIn(root *html.Node, start, end Point) []*html.Node {
	var out []*html.Node
	Walk(root, func(n *html.Node) bool {
		if n.Type == html.TextNode && n.Data != "" && contained(n, start, end) {
			out = append(out, n)
		}
		return false
	})
	return out
}

// overlapping returns the text nodes sharing at least one cluster with r
// without modifying the tree.
func overlapping(root *html.Node, r Range) []*html.Node {
	var out []*html.Node
	Walk(root, func(n *html.Node) bool {
		if n.Type != html.TextNode || n.Data == "" {
			return false
		}
		c := grapheme.Count(n.Data)
		if Compare(Point{Node: n, Offset: c}, r.Start) <= 0 || Compare(Point{Node: n}, r.End) >= 0 {
			return false
		}
		out = append(out, n)
		return false
	})
	return out
}

// RangeText returns the text covered by r.
func (s *Surface) RangeText(r Range) string {
	r = r.Normalize()
	var sb strings.Builder
	for _, n := range overlapping(s.root, r) {
		from, to := 0, grapheme.Count(n.Data)
		if n == r.Start.Node {
			from = r.Start.Offset
		}
		if n == r.End.Node {
			to = r.End.Offset
		}
		sb.WriteString(grapheme.Slice(n.Data, from, to))
	}
	return sb.String()
}

// SelectedText returns the text of the current selection.
func (s *Surface) SelectedText() string {
	r, ok := s.Selection()
	if !ok {
		return ""
	}
	return s.RangeText(r)
}

func (s *Surface) blockOf(n *html.Node) *html.Node {
	if b := Closest(n, nil, func(c *html.Node) bool { return IsBlock(c) && !isList(c) }); b != nil && isAncestor(s.root, b) {
		return b
	}
	return s.root
}

// deleteRange removes the content of r, joins the blocks at its ends and
// returns the collapsed caret.
func (s *Surface) deleteRange(r Range) Point {
	sb, eb := splitRange(r)
	sp, ep := sb.point(), eb.point()
	endBlock := s.blockOf(eb.parent)
	nodes := collectContained(s.root, sp, ep)

	marker := &html.Node{Type: html.CommentNode, Data: markerData}
	sb.parent.InsertBefore(marker, sb.before)
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}

	startBlock := s.blockOf(marker.Parent)
	if endBlock != startBlock && s.Contains(endBlock) && endBlock != s.root && !isAncestor(endBlock, marker) {
		ref := branchOf(startBlock, marker)
		for c := endBlock.FirstChild; c != nil; c = endBlock.FirstChild {
			endBlock.RemoveChild(c)
			insertAfter(c, ref)
			ref = c
		}
		parent := endBlock.Parent
		parent.RemoveChild(endBlock)
		for parent != s.root && parent.FirstChild == nil && parent.Parent != nil {
			next := parent.Parent
			next.RemoveChild(parent)
			parent = next
		}
	}
	pruneEmpty(s.root)

	p := Before(marker)
	marker.Parent.RemoveChild(marker)
	p = normalizeCaret(p)
	s.setCaret(p)
	return p
}

func collectContained(root *html.Node, start, end Point) []*html.Node {
	var out []*html.Node
	Walk(root, func(n *html.Node) bool {
		if n != root && contained(n, start, end) {
			out = append(out, n)
			return true
		}
		return false
	})
	return out
}

// DeleteContents removes the selected content.
func (s *Surface) DeleteContents() error {
	r, ok := s.Selection()
	if !ok {
		return ErrNoSelection
	}
	if r.Collapsed() {
		return nil
	}
	s.deleteRange(r)
	s.bump()
	return nil
}

// insertAt inserts nodes at p and returns the point after the last one.
func insertAt(p Point, nodes ...*html.Node) Point {
	b := toBoundary(p)
	for _, n := range nodes {
		b.parent.InsertBefore(n, b.before)
	}
	if len(nodes) == 0 {
		return b.point()
	}
	last := nodes[len(nodes)-1]
	if last.Type == html.TextNode {
		return Point{Node: last, Offset: grapheme.Count(last.Data)}
	}
	return After(last)
}

// InsertText replaces the selection with text, applying the armed typing
// style.
func (s *Surface) InsertText(text string) error {
	r, ok := s.Selection()
	if !ok {
		return ErrNoSelection
	}
	p := r.Start
	if !r.Collapsed() {
		p = s.deleteRange(r)
	}
	defer s.bump()
	if text == "" {
		return nil
	}
	typing := s.typing
	s.typing = nil
	if len(typing) == 0 {
		p = normalizeCaret(p)
		if p.Node.Type == html.TextNode {
			head, tail := grapheme.SplitAt(p.Node.Data, p.Offset)
			p.Node.Data = head + text + tail
			s.setCaret(Point{Node: p.Node, Offset: grapheme.Count(head + text)})
			return nil
		}
	}
	t := NewText(text)
	insertAt(p, t)
	for _, ts := range typing {
		ts.apply(t)
	}
	s.setCaret(Point{Node: t, Offset: grapheme.Count(text)})
	return nil
}

// InsertHTML replaces the selection with parsed markup and places the caret
// after it.
func (s *Surface) InsertHTML(markup string) error {
	nodes, err := parseFragment(markup)
	if err != nil {
		return err
	}
	return s.InsertNodes(nodes...)
}

// InsertNodes replaces the selection with detached nodes.
func (s *Surface) InsertNodes(nodes ...*html.Node) error {
	r, ok := s.Selection()
	if !ok {
		return ErrNoSelection
	}
	p := r.Start
	if !r.Collapsed() {
		p = s.deleteRange(r)
	}
	s.setCaret(normalizeCaret(insertAt(p, nodes...)))
	s.inserted = nodes
	s.typing = nil
	s.bump()
	return nil
}

// DeleteBackward deletes the selection or the cluster before the caret,
// joining with the previous line at a line start.
func (s *Surface) DeleteBackward() error {
	return s.deleteStep(-1)
}

// DeleteForward deletes the selection or the cluster after the caret.
func (s *Surface) DeleteForward() error {
	return s.deleteStep(1)
}

func (s *Surface) deleteStep(dir int) error {
	r, ok := s.Selection()
	if !ok {
		return ErrNoSelection
	}
	defer s.bump()
	if !r.Collapsed() {
		s.deleteRange(r)
		return nil
	}
	lines := s.Lines()
	li, col := locate(lines, r.Start)
	stops := lines[li].Stops()
	var from, to Point
	switch {
	case dir < 0 && col > 0:
		from, to = stops[col-1], stops[col]
	case dir < 0 && li > 0:
		prev := lines[li-1].Stops()
		from, to = prev[len(prev)-1], stops[0]
	case dir > 0 && col < len(stops)-1:
		from, to = stops[col], stops[col+1]
	case dir > 0 && li < len(lines)-1:
		from, to = stops[len(stops)-1], lines[li+1].Stops()[0]
	default:
		return nil
	}
	s.deleteRange(Range{Start: from, End: to})
	return nil
}

// InsertParagraph splits the block at the caret. An empty list item leaves
// its list instead.
func (s *Surface) InsertParagraph() error {
	r, ok := s.Selection()
	if !ok {
		return ErrNoSelection
	}
	defer s.bump()
	p := r.Start
	if !r.Collapsed() {
		p = s.deleteRange(r)
	}
	s.typing = nil
	block := s.blockOf(p.Node)
	if block == s.root {
		marker := &html.Node{Type: html.CommentNode, Data: markerData}
		insertAt(p, marker)
		block = s.wrapLooseRun(branchOf(s.root, marker), "div")
		p = Before(marker)
		marker.Parent.RemoveChild(marker)
	}
	if isElement(block, atom.Li) && isWhitespace(TextContent(block)) && !hasElement(block, atom.Img) {
		s.liftListItem(block)
		return nil
	}
	b := toBoundary(p)
	next := splitAt(block, b)
	pruneEmpty(block)
	pruneEmpty(next)
	if isHeading(next) && next.FirstChild == nil {
		rename(next, "p")
	}
	s.setCaret(firstCaret(next))
	return nil
}

// InsertLineBreak inserts a <br> at the caret.
func (s *Surface) InsertLineBreak() error {
	return s.InsertNodes(NewElement("br"))
}

func hasElement(n *html.Node, a atom.Atom) bool {
	found := false
	Walk(n, func(c *html.Node) bool {
		if isElement(c, a) {
			found = true
		}
		return found
	})
	return found
}

// wrapLooseRun wraps the run of inline siblings around seed, a child of the
// body, in a new block element. A nil seed appends an empty block.
func (s *Surface) wrapLooseRun(seed *html.Node, tag string) *html.Node {
	block := NewElement(tag)
	if seed == nil {
		s.root.AppendChild(block)
		if s.hasSel && s.anchor.Node == s.root {
			s.setCaret(Point{Node: block})
		}
		return block
	}
	first, last := seed, seed
	for first.PrevSibling != nil && !IsBlock(first.PrevSibling) {
		first = first.PrevSibling
	}
	for last.NextSibling != nil && !IsBlock(last.NextSibling) {
		last = last.NextSibling
	}
	s.root.InsertBefore(block, first)
	for c := first; ; {
		next := c.NextSibling
		s.root.RemoveChild(c)
		block.AppendChild(c)
		if c == last {
			break
		}
		c = next
	}
	return block
}

// lineSeed returns the body child that starts a loose line.
func (s *Surface) lineSeed(l Line) *html.Node {
	switch {
	case len(l.Nodes) > 0:
		return branchOf(s.root, l.Nodes[0])
	case l.Break != nil:
		return branchOf(s.root, l.Break)
	}
	return nil
}
