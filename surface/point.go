package surface

import (
	"golang.org/x/net/html"

	"github.com/iw2rmb/plume/internal/grapheme"
)

// Point is a boundary point: a node and an offset into it.
type Point struct {
	Node   *html.Node
	Offset int
}

// Range is a selection between two boundary points. Start may follow End
// when the selection was made backwards.
type Range struct {
	Start Point
	End   Point
}

// Caret returns a collapsed range at p.
func Caret(p Point) Range { return Range{Start: p, End: p} }

// Collapsed reports whether the range has no extent.
func (r Range) Collapsed() bool { return Compare(r.Start, r.End) == 0 }

// Normalize returns r with Start before End in document order.
func (r Range) Normalize() Range {
	if Compare(r.Start, r.End) > 0 {
		return Range{Start: r.End, End: r.Start}
	}
	return r
}

func maxOffset(n *html.Node) int {
	if n.Type == html.TextNode {
		return grapheme.Count(n.Data)
	}
	return childCount(n)
}

func clampPoint(p Point) Point {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if m := maxOffset(p.Node); p.Offset > m {
		p.Offset = m
	}
	return p
}

func nodePath(n *html.Node) []int {
	var path []int
	for c := n; c.Parent != nil; c = c.Parent {
		path = append(path, childIndex(c))
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Compare orders two points of the same tree: -1 when a is before b, 0 when
// they are the same boundary, 1 otherwise.
func Compare(a, b Point) int {
	if a.Node == b.Node {
		switch {
		case a.Offset < b.Offset:
			return -1
		case a.Offset > b.Offset:
			return 1
		}
		return 0
	}
	pa := append(nodePath(a.Node), a.Offset)
	pb := append(nodePath(b.Node), b.Offset)
	for i := 0; i < len(pa) && i < len(pb); i++ {
		switch {
		case pa[i] < pb[i]:
			return -1
		case pa[i] > pb[i]:
			return 1
		}
	}
	switch {
	case len(pa) < len(pb):
		return -1
	case len(pa) > len(pb):
		return 1
	}
	return 0
}

// Before returns the point immediately before n in its parent.
func Before(n *html.Node) Point { return Point{Node: n.Parent, Offset: childIndex(n)} }

// After returns the point immediately after n in its parent.
func After(n *html.Node) Point { return Point{Node: n.Parent, Offset: childIndex(n) + 1} }

// boundary addresses a position between children without using an index, so
// it survives insertions before it.
type boundary struct {
	parent *html.Node
	before *html.Node
}

func (b boundary) point() Point {
	if b.before == nil {
		return Point{Node: b.parent, Offset: childCount(b.parent)}
	}
	return Point{Node: b.parent, Offset: childIndex(b.before)}
}

// toBoundary converts p to an element boundary, splitting a text node when p
// falls inside one.
func toBoundary(p Point) boundary {
	p = clampPoint(p)
	if p.Node.Type != html.TextNode {
		return boundary{parent: p.Node, before: childAt(p.Node, p.Offset)}
	}
	t := p.Node
	switch {
	case p.Offset == 0:
		return boundary{parent: t.Parent, before: t}
	case p.Offset >= grapheme.Count(t.Data):
		return boundary{parent: t.Parent, before: t.NextSibling}
	}
	return boundary{parent: t.Parent, before: splitText(t, p.Offset)}
}

// splitText cuts t before the off-th cluster and returns the new second half.
func splitText(t *html.Node, off int) *html.Node {
	head, tail := grapheme.SplitAt(t.Data, off)
	t.Data = head
	next := NewText(tail)
	insertAfter(next, t)
	return next
}

// normalizeCaret moves an element point into an adjacent text node.
func normalizeCaret(p Point) Point {
	if p.Node == nil || p.Node.Type == html.TextNode {
		return p
	}
	if p.Offset > 0 {
		if prev := childAt(p.Node, p.Offset-1); isText(prev) {
			return Point{Node: prev, Offset: grapheme.Count(prev.Data)}
		}
	}
	if next := childAt(p.Node, p.Offset); isText(next) {
		return Point{Node: next}
	}
	return p
}

// contained reports whether n lies entirely inside [start, end].
func contained(n *html.Node, start, end Point) bool {
	if n.Parent == nil {
		return false
	}
	return Compare(start, Before(n)) <= 0 && Compare(After(n), end) <= 0
}
