package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/iw2rmb/plume/editor"
	"github.com/iw2rmb/plume/internal/grapheme"
	"github.com/iw2rmb/plume/surface"
)

// glyph is one rendered cell group: a grapheme cluster or an image label.
// Glyph j of a line sits between caret stops j and j+1.
type glyph struct {
	text  string
	width int
	node  *html.Node
	style lipgloss.Style
}

type lineLayout struct {
	stops  []surface.Point
	glyphs []glyph
	// indent is the number of blank cells before the marker.
	indent int
	// marker is the list bullet or number shown on the first row.
	marker string
	align  string
}

func (l lineLayout) gutter() int { return l.indent + runewidth.StringWidth(l.marker) }

// visualRow is one wrapped row of a line.
type visualRow struct {
	line  int
	first int
	end   int
	// x is the cell where the first glyph starts.
	x    int
	head bool
	last bool
}

type docLayout struct {
	lines []lineLayout
	rows  []visualRow
}

// pos is a caret stop: a line index and a stop index in that line.
type pos struct{ line, col int }

func (p pos) before(q pos) bool {
	return p.line < q.line || (p.line == q.line && p.col < q.col)
}

func buildLayout(surf *surface.Surface, st Style, width int) docLayout {
	var (
		layout docLayout
		marked = map[*html.Node]bool{}
	)
	root := surf.Root()
	for _, l := range surf.Lines() {
		ll := lineLayout{stops: l.Stops(), align: alignOf(l.Block)}
		for _, n := range l.Nodes {
			ll.glyphs = append(ll.glyphs, glyphsOf(n, st)...)
		}
		ll.indent, ll.marker = listDecoration(l.Block, root, marked)
		layout.lines = append(layout.lines, ll)
	}

	for i, ll := range layout.lines {
		layout.rows = append(layout.rows, wrapLine(i, ll, width)...)
	}
	return layout
}

func glyphsOf(n *html.Node, st Style) []glyph {
	if n.Type != html.TextNode {
		label := "[image]"
		if alt, ok := surface.Attr(n, "alt"); ok && alt != "" {
			label = "[" + alt + "]"
		}
		return []glyph{{text: label, width: runewidth.StringWidth(label), node: n, style: st.Image}}
	}
	style := inlineStyle(n, st)
	clusters := grapheme.Split(n.Data)
	out := make([]glyph, 0, len(clusters))
	for _, c := range clusters {
		if grapheme.IsSpace(c) {
			c = " "
		}
		w := grapheme.Width(c)
		if w < 0 {
			w = 0
		}
		out = append(out, glyph{text: c, width: w, node: n, style: style})
	}
	return out
}

// inlineStyle resolves the formatting of a text node. Inner elements win.
func inlineStyle(n *html.Node, st Style) lipgloss.Style {
	s := lipgloss.NewStyle()
	fgSet, bgSet := false, false
	for p := n.Parent; p != nil; p = p.Parent {
		switch p.DataAtom {
		case atom.B, atom.Strong:
			s = s.Bold(true)
		case atom.I, atom.Em:
			s = s.Italic(true)
		case atom.U:
			s = s.Underline(true)
		case atom.S, atom.Strike, atom.Del:
			s = s.Strikethrough(true)
		case atom.A:
			s = s.Inherit(st.Link)
			fgSet = true
		case atom.Code, atom.Pre:
			s = s.Inherit(st.Code)
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			s = s.Inherit(st.Heading)
		case atom.Font:
			if c, ok := surface.Attr(p, "color"); ok && !fgSet {
				s, fgSet = s.Foreground(lipgloss.Color(c)), true
			}
		}
		if c, ok := surface.Style(p, "color"); ok && !fgSet {
			s, fgSet = s.Foreground(lipgloss.Color(c)), true
		}
		if c, ok := surface.Style(p, "background-color"); ok && !bgSet {
			s, bgSet = s.Background(lipgloss.Color(c)), true
		}
	}
	return s.Inherit(st.Text)
}

func alignOf(block *html.Node) string {
	if v, ok := surface.Style(block, "text-align"); ok {
		return v
	}
	v, _ := surface.Attr(block, "align")
	return v
}

// listDecoration returns the indentation and list marker of a line. Only the
// first line of a list item carries the marker.
func listDecoration(block, root *html.Node, marked map[*html.Node]bool) (int, string) {
	indent := 0
	var item *html.Node
	for p := block; p != nil && p != root; p = p.Parent {
		switch p.DataAtom {
		case atom.Li:
			if item == nil {
				item = p
			}
		case atom.Ul, atom.Ol, atom.Blockquote:
			indent += 2
		}
		if v, ok := surface.Style(p, "margin-left"); ok {
			if px, err := strconv.Atoi(strings.TrimSuffix(v, "px")); err == nil {
				indent += px / 20
			}
		}
	}
	if item == nil {
		return indent, ""
	}
	indent -= 2
	width := 2
	marker := "• "
	if item.Parent != nil && item.Parent.DataAtom == atom.Ol {
		marker = strconv.Itoa(itemNumber(item)) + ". "
		width = len(marker)
	}
	if marked[item] {
		return indent + width, ""
	}
	marked[item] = true
	return indent, marker
}

func itemNumber(li *html.Node) int {
	n := 0
	for c := li.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c.DataAtom == atom.Li {
			n++
		}
		if c == li {
			break
		}
	}
	return n
}

// wrapLine splits a line into rows no wider than width. A non-positive width
// disables wrapping.
func wrapLine(line int, ll lineLayout, width int) []visualRow {
	gutter := ll.gutter()
	avail := width - gutter
	if width <= 0 {
		avail = int(^uint(0) >> 1)
	}
	if avail < 1 {
		avail = 1
	}

	var rows []visualRow
	start, cells := 0, 0
	for j, g := range ll.glyphs {
		if cells+g.width > avail && j > start {
			rows = append(rows, visualRow{line: line, first: start, end: j})
			start, cells = j, 0
		}
		cells += g.width
	}
	rows = append(rows, visualRow{line: line, first: start, end: len(ll.glyphs)})

	for i := range rows {
		r := &rows[i]
		r.head = i == 0
		r.last = i == len(rows)-1
		r.x = gutter
		if width <= 0 {
			continue
		}
		used := 0
		for _, g := range ll.glyphs[r.first:r.end] {
			used += g.width
		}
		switch ll.align {
		case "center":
			r.x += max(avail-used, 0) / 2
		case "right":
			r.x += max(avail-used, 0)
		}
	}
	return rows
}

// renderState is what the renderer needs beyond the layout.
type renderState struct {
	focused bool
	caret   pos
	hasSel  bool
	from    pos
	to      pos
}

func (m *Model) renderState() renderState {
	surf := m.ctl.Surface()
	var rs renderState
	rs.focused = m.ctl.Focus() == editor.FocusSurface
	if head, ok := surf.Head(); ok {
		rs.caret.line, rs.caret.col = surf.Locate(head)
	}
	if r, ok := surf.Selection(); ok && !r.Collapsed() {
		rs.hasSel = true
		rs.from.line, rs.from.col = surf.Locate(r.Start)
		rs.to.line, rs.to.col = surf.Locate(r.End)
	}
	return rs
}

func renderRows(layout docLayout, st Style, rs renderState) string {
	out := make([]string, 0, len(layout.rows))
	for _, r := range layout.rows {
		ll := layout.lines[r.line]
		var sb strings.Builder

		pad := r.x
		if r.head && ll.marker != "" {
			sb.WriteString(strings.Repeat(" ", ll.indent))
			sb.WriteString(st.Bullet.Render(ll.marker))
			pad -= ll.gutter()
		}
		sb.WriteString(strings.Repeat(" ", max(pad, 0)))

		for j := r.first; j < r.end; j++ {
			g := ll.glyphs[j]
			style := g.style
			at := pos{r.line, j}
			if rs.hasSel && !at.before(rs.from) && at.before(rs.to) {
				style = st.Selection.Inherit(style)
			}
			if rs.focused && at == rs.caret {
				style = st.Cursor.Inherit(style)
			}
			sb.WriteString(style.Render(g.text))
		}
		if rs.focused && r.last && rs.caret == (pos{r.line, r.end}) {
			sb.WriteString(st.Cursor.Render(" "))
		}
		out = append(out, sb.String())
	}
	return strings.Join(out, "\n")
}
