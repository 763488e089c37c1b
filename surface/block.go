package surface

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// IndentStep is the left margin added by one indent level.
const IndentStep = 40

var formatBlockTags = []string{"p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "pre", "blockquote", "address"}

// selectedLines returns the lines touched by the selection, or the caret line.
func (s *Surface) selectedLines() []Line {
	r, ok := s.Selection()
	if !ok {
		return nil
	}
	lines := s.Lines()
	if out := rangeLines(lines, r); len(out) > 0 {
		return out
	}
	li, _ := locate(lines, r.Start)
	return lines[li : li+1]
}

// selectedBlocks returns the distinct blocks of the selected lines. Loose
// lines under the body are wrapped in a new element of tag first.
func (s *Surface) selectedBlocks(tag string) []*html.Node {
	var out []*html.Node
	for _, l := range s.selectedLines() {
		b := l.Block
		if b == s.root {
			if seed := s.lineSeed(l); IsBlock(seed) {
				b = seed
			} else {
				b = s.wrapLooseRun(seed, tag)
			}
		}
		if !slices.Contains(out, b) {
			out = append(out, b)
		}
	}
	return out
}

func (s *Surface) formatBlock(value string) error {
	tag := strings.ToLower(strings.Trim(strings.TrimSpace(value), "<>"))
	if !slices.Contains(formatBlockTags, tag) {
		return ErrInvalidValue
	}
	for _, b := range s.selectedBlocks(tag) {
		switch {
		case b.DataAtom == atom.Lookup([]byte(tag)):
		case isElement(b, atom.P, atom.Div, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Pre, atom.Address):
			rename(b, tag)
		default:
			el := NewElement(tag)
			moveChildren(b, el)
			b.AppendChild(el)
		}
	}
	s.repairSelection(nil)
	return nil
}

func (s *Surface) blockFormat() string {
	r, ok := s.Selection()
	if !ok {
		return ""
	}
	b := s.blockOf(contextNode(r.Start))
	if b == s.root {
		return ""
	}
	return b.Data
}

func listItem(n *html.Node) *html.Node {
	return Closest(n, nil, func(c *html.Node) bool { return isElement(c, atom.Li) })
}

func (s *Surface) listState(tag atom.Atom) bool {
	r, ok := s.Selection()
	if !ok {
		return false
	}
	li := listItem(contextNode(r.Start))
	return li != nil && isElement(li.Parent, tag)
}

// toggleList turns the selected blocks into items of a tag list, converts
// items of the other list type, or lifts items out when they are already in
// a tag list.
func (s *Surface) toggleList(tag string) {
	want := atom.Lookup([]byte(tag))
	lines := s.selectedLines()
	var items []*html.Node
	allIn, allListed := true, true
	for _, l := range lines {
		li := listItem(l.Block)
		if li == nil {
			allIn, allListed = false, false
			continue
		}
		if !isElement(li.Parent, want) {
			allIn = false
		}
		if !slices.Contains(items, li) {
			items = append(items, li)
		}
	}
	switch {
	case allIn:
		for _, li := range items {
			s.unlistItem(li)
		}
	case allListed:
		for _, li := range items {
			rename(li.Parent, tag)
		}
	default:
		s.makeList(tag)
	}
	s.repairSelection(nil)
}

func (s *Surface) makeList(tag string) {
	var list *html.Node
	for _, b := range s.selectedBlocks("div") {
		if listItem(b) != nil {
			continue
		}
		li := NewElement("li")
		if b.DataAtom == atom.Td || b.DataAtom == atom.Th || b.DataAtom == atom.Blockquote {
			moveChildren(b, li)
			nl := NewElement(tag)
			nl.AppendChild(li)
			b.AppendChild(nl)
			continue
		}
		switch {
		case list != nil && list.NextSibling == b:
		case isElement(b.PrevSibling, atom.Lookup([]byte(tag))):
			list = b.PrevSibling
		default:
			list = NewElement(tag)
			b.Parent.InsertBefore(list, b)
		}
		moveChildren(b, li)
		list.AppendChild(li)
		b.Parent.RemoveChild(b)
		if s.hasSel && (s.anchor.Node == b || s.focus.Node == b) {
			s.setCaret(Point{Node: li})
		}
	}
}

// unlistItem moves li out of its list into a paragraph at the same place.
func (s *Surface) unlistItem(li *html.Node) {
	list := li.Parent
	splitAround(list, li)
	p := NewElement("p")
	moveChildren(li, p)
	list.Parent.InsertBefore(p, list)
	list.Parent.RemoveChild(list)
	if s.hasSel && (s.anchor.Node == li || s.focus.Node == li) {
		s.setCaret(Point{Node: p})
	}
}

// liftListItem moves li one nesting level up, leaving the list entirely from
// the top level.
func (s *Surface) liftListItem(li *html.Node) {
	list := li.Parent
	parentItem := list.Parent
	if !isElement(parentItem, atom.Li) {
		s.unlistItem(li)
		s.repairSelection(nil)
		return
	}
	splitAround(list, li)
	list.RemoveChild(li)
	insertAfter(li, parentItem)
	list.Parent.RemoveChild(list)
	s.repairSelection(li)
}

// nestListItem moves li into a sub-list of its previous item.
func nestListItem(li *html.Node) {
	prev := li.PrevSibling
	for prev != nil && prev.Type == html.TextNode && isWhitespace(prev.Data) {
		prev = prev.PrevSibling
	}
	if !isElement(prev, atom.Li) {
		return
	}
	list := li.Parent
	sub := prev.LastChild
	if !isElement(sub, list.DataAtom) {
		sub = NewElement(list.Data)
		prev.AppendChild(sub)
	}
	list.RemoveChild(li)
	sub.AppendChild(li)
}

func marginLeft(n *html.Node) int {
	v, ok := Style(n, "margin-left")
	if !ok {
		return 0
	}
	px, _ := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(v), "px"))
	return px
}

func (s *Surface) indent(d Dialect) {
	var quote *html.Node
	for _, b := range s.selectedBlocks("div") {
		if isElement(b, atom.Li) {
			nestListItem(b)
			continue
		}
		if d == Styled {
			setStyle(b, "margin-left", strconv.Itoa(marginLeft(b)+IndentStep)+"px")
			continue
		}
		if quote != nil && quote.NextSibling == b {
			b.Parent.RemoveChild(b)
			quote.AppendChild(b)
			continue
		}
		quote = NewElement("blockquote", html.Attribute{Key: "style", Val: "margin: 0 0 0 40px; border: none; padding: 0px;"})
		wrap(b, quote)
	}
}

func (s *Surface) outdent() {
	for _, b := range s.selectedBlocks("div") {
		if isElement(b, atom.Li) {
			s.liftListItem(b)
			continue
		}
		w := Closest(b, s.root, func(n *html.Node) bool {
			return marginLeft(n) > 0 || isElement(n, atom.Blockquote)
		})
		if w == nil {
			continue
		}
		if w != b {
			isolate(w, b)
		}
		if isElement(w, atom.Blockquote) {
			unwrap(w)
			continue
		}
		if m := marginLeft(w) - IndentStep; m > 0 {
			setStyle(w, "margin-left", strconv.Itoa(m)+"px")
			continue
		}
		removeStyle(w, "margin-left")
		if w != b && isElement(w, atom.Div) && len(w.Attr) == 0 {
			unwrap(w)
		}
	}
}

var justifyValues = map[Command]string{
	JustifyLeft:   "left",
	JustifyCenter: "center",
	JustifyRight:  "right",
	JustifyFull:   "justify",
}

func alignment(b *html.Node) string {
	if v, ok := Style(b, "text-align"); ok {
		return strings.ToLower(v)
	}
	if v, ok := Attr(b, "align"); ok {
		return strings.ToLower(v)
	}
	return ""
}

func (s *Surface) justify(cmd Command, d Dialect) {
	v := justifyValues[cmd]
	for _, b := range s.selectedBlocks("div") {
		removeStyle(b, "text-align")
		removeAttr(b, "align")
		if cmd == JustifyLeft {
			continue
		}
		if d == Styled {
			setStyle(b, "text-align", v)
		} else {
			setAttr(b, "align", v)
		}
	}
}

func (s *Surface) justifyState(cmd Command) bool {
	r, ok := s.Selection()
	if !ok {
		return false
	}
	b := s.blockOf(contextNode(r.Start))
	got := ""
	if b != s.root {
		got = alignment(b)
	}
	if cmd == JustifyLeft {
		return got == "" || got == "left" || got == "start"
	}
	return got == justifyValues[cmd]
}

func (s *Surface) insertImage(src string) error {
	src = strings.TrimSpace(src)
	if src == "" {
		return ErrInvalidValue
	}
	return s.InsertNodes(NewElement("img", html.Attribute{Key: "src", Val: src}))
}
