package surface

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/iw2rmb/plume/internal/grapheme"
)

// Line is one visual line of the document: the inline leaves between two
// block boundaries or <br> elements.
type Line struct {
	// Block is the nearest block container; the body for loose content.
	Block *html.Node
	// Nodes are the text and image leaves of the line in order.
	Nodes []*html.Node
	// Break is the <br> that terminates the line, if any.
	Break *html.Node
}

// Lines splits the document into visual lines. An empty document has one
// empty line.
func (s *Surface) Lines() []Line {
	var (
		lines []Line
		cur   *Line
	)
	flush := func() {
		if cur != nil {
			lines = append(lines, *cur)
			cur = nil
		}
	}
	open := func(block *html.Node) {
		if cur == nil || cur.Block != block {
			flush()
			cur = &Line{Block: block}
		}
	}

	var walk func(n, block *html.Node)
	walk = func(n, block *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.Type == html.TextNode:
				if isWhitespace(c.Data) && (IsBlock(c.PrevSibling) || IsBlock(c.NextSibling) || isList(n) || isElement(n, atom.Table, atom.Tbody, atom.Thead, atom.Tr)) {
					continue
				}
				open(block)
				cur.Nodes = append(cur.Nodes, c)
			case isElement(c, atom.Img):
				open(block)
				cur.Nodes = append(cur.Nodes, c)
			case isElement(c, atom.Br):
				open(block)
				cur.Break = c
				flush()
			case IsBlock(c):
				flush()
				before := len(lines)
				walk(c, c)
				flush()
				if len(lines) == before && !isList(c) && !isElement(c, atom.Table, atom.Tbody, atom.Thead, atom.Tr) {
					lines = append(lines, Line{Block: c})
				}
			case c.Type == html.ElementNode:
				walk(c, block)
			}
		}
	}
	walk(s.root, s.root)
	flush()
	if len(lines) == 0 {
		lines = append(lines, Line{Block: s.root})
	}
	return lines
}

// Stops returns every caret position of the line from start to end. Adjacent
// leaves share one boundary stop.
func (l Line) Stops() []Point {
	if len(l.Nodes) == 0 {
		if l.Break != nil {
			return []Point{Before(l.Break)}
		}
		return []Point{{Node: l.Block}}
	}
	var stops []Point
	for i, n := range l.Nodes {
		if n.Type == html.TextNode {
			start := 1
			if i == 0 {
				start = 0
			}
			for k := start; k <= grapheme.Count(n.Data); k++ {
				stops = append(stops, Point{Node: n, Offset: k})
			}
			continue
		}
		if i == 0 {
			stops = append(stops, Before(n))
		}
		stops = append(stops, After(n))
	}
	return stops
}

// Locate maps p to a line index and a column in that line's stops.
func (s *Surface) Locate(p Point) (line, col int) {
	return locate(s.Lines(), p)
}

func locate(lines []Line, p Point) (line, col int) {
	for li, l := range lines {
		for ci, stop := range l.Stops() {
			if Compare(stop, p) > 0 {
				return line, col
			}
			line, col = li, ci
		}
	}
	return line, col
}

// Direction is a caret movement.
type Direction uint8

const (
	Left Direction = iota
	Right
	Up
	Down
	LineStart
	LineEnd
)

// Move moves the caret. With extend, the selection focus moves and the anchor
// stays.
func (s *Surface) Move(dir Direction, extend bool) {
	if _, ok := s.Selection(); !ok {
		s.setCaret(s.endPoint())
	}
	r, _ := s.Selection()
	if !extend && !r.Collapsed() && (dir == Left || dir == Right) {
		if dir == Left {
			s.setCaret(r.Start)
		} else {
			s.setCaret(r.End)
		}
		s.typing = nil
		s.bump()
		return
	}

	lines := s.Lines()
	li, col := locate(lines, s.focus)
	switch dir {
	case Left:
		if col > 0 {
			col--
		} else if li > 0 {
			li--
			col = len(lines[li].Stops()) - 1
		}
	case Right:
		if col < len(lines[li].Stops())-1 {
			col++
		} else if li < len(lines)-1 {
			li++
			col = 0
		}
	case Up:
		if li > 0 {
			li--
		}
	case Down:
		if li < len(lines)-1 {
			li++
		}
	case LineStart:
		col = 0
	case LineEnd:
		col = len(lines[li].Stops()) - 1
	}
	stops := lines[li].Stops()
	if col >= len(stops) {
		col = len(stops) - 1
	}
	next := stops[col]
	if extend {
		s.focus = next
	} else {
		s.setCaret(next)
	}
	s.typing = nil
	s.bump()
}

// rangeLines returns the lines that intersect r.
func rangeLines(lines []Line, r Range) []Line {
	var out []Line
	for _, l := range lines {
		stops := l.Stops()
		if Compare(stops[0], r.End) <= 0 && Compare(stops[len(stops)-1], r.Start) >= 0 {
			out = append(out, l)
		}
	}
	return out
}
