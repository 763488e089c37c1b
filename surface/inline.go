package surface

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// cssFontSizes maps legacy font sizes 1..7 to CSS keywords.
var cssFontSizes = []string{"x-small", "small", "medium", "large", "x-large", "xx-large", "xxx-large"}

// inlineStyle describes how one character format is written and recognized.
type inlineStyle struct {
	tags     []atom.Atom
	fontAttr string
	prop     string
	// token is the value written by the styled dialect for toggles; toggles
	// match when the property value contains it.
	token string
	// weight marks font-weight, where numeric values also match.
	weight bool
}

var inlineStyles = map[Command]inlineStyle{
	Bold:          {tags: []atom.Atom{atom.B, atom.Strong}, prop: "font-weight", token: "bold", weight: true},
	Italic:        {tags: []atom.Atom{atom.I, atom.Em}, prop: "font-style", token: "italic"},
	Underline:     {tags: []atom.Atom{atom.U}, prop: "text-decoration", token: "underline"},
	Strikethrough: {tags: []atom.Atom{atom.S, atom.Strike, atom.Del}, prop: "text-decoration", token: "line-through"},
	ForeColor:     {fontAttr: "color", prop: "color"},
	HiliteColor:   {prop: "background-color"},
	FontName:      {fontAttr: "face", prop: "font-family"},
	FontSize:      {fontAttr: "size", prop: "font-size"},
}

func (st inlineStyle) toggle() bool { return st.token != "" }

// valueOf reports the format value carried by element n itself.
func (st inlineStyle) valueOf(n *html.Node) (string, bool) {
	if n == nil || n.Type != html.ElementNode {
		return "", false
	}
	if slices.Contains(st.tags, n.DataAtom) {
		return "true", true
	}
	if st.fontAttr != "" && n.DataAtom == atom.Font {
		if v, ok := Attr(n, st.fontAttr); ok {
			return v, true
		}
	}
	v, ok := Style(n, st.prop)
	if !ok {
		return "", false
	}
	if st.toggle() {
		return "true", st.matchToken(v)
	}
	return v, true
}

func (st inlineStyle) matchToken(v string) bool {
	v = strings.ToLower(v)
	if st.weight {
		if w, err := strconv.Atoi(v); err == nil {
			return w >= 600
		}
		return v == "bold" || v == "bolder"
	}
	if st.token == "italic" {
		return v == "italic" || v == "oblique"
	}
	return slices.Contains(strings.Fields(v), st.token)
}

// lookup returns the nearest inline ancestor-or-self of n below its block that
// carries the format.
func (st inlineStyle) lookup(n *html.Node) (*html.Node, string) {
	for p := n; p != nil && !IsBlock(p); p = p.Parent {
		if v, ok := st.valueOf(p); ok {
			return p, v
		}
	}
	return nil, ""
}

// strip removes the format from element n, unwrapping n when nothing else
// is left on it.
func (st inlineStyle) strip(n *html.Node) {
	if slices.Contains(st.tags, n.DataAtom) {
		unwrap(n)
		return
	}
	if st.fontAttr != "" && n.DataAtom == atom.Font {
		removeAttr(n, st.fontAttr)
	}
	if st.toggle() && st.prop == "text-decoration" {
		removeStyleToken(n, st.prop, st.token)
	} else {
		removeStyle(n, st.prop)
	}
	if isElement(n, atom.Font, atom.Span) && len(n.Attr) == 0 {
		unwrap(n)
	}
}

// clear removes the format from every ancestor of t up to its block.
func (st inlineStyle) clear(t *html.Node) {
	for {
		w, _ := st.lookup(t.Parent)
		if w == nil {
			return
		}
		isolate(w, t)
		st.strip(w)
	}
}

func (st inlineStyle) element(d Dialect, value string) *html.Node {
	if d == Markup {
		switch {
		case len(st.tags) > 0:
			return NewElement(st.tags[0].String())
		case st.fontAttr != "":
			return NewElement("font", html.Attribute{Key: st.fontAttr, Val: value})
		}
	}
	if st.toggle() {
		value = st.token
	}
	el := NewElement("span")
	setStyle(el, st.prop, value)
	return el
}

// apply formats t. Toggles are only wrapped when not already on.
func (st inlineStyle) apply(t *html.Node, d Dialect, value string) {
	if st.toggle() {
		if w, _ := st.lookup(t.Parent); w != nil {
			return
		}
	} else {
		st.clear(t)
	}
	wrap(t, st.element(d, value))
}

// typingStyle is a format armed at a collapsed caret and applied to the next
// inserted text.
type typingStyle struct {
	cmd     Command
	on      bool
	value   string
	dialect Dialect
}

func (ts typingStyle) apply(t *html.Node) {
	st := inlineStyles[ts.cmd]
	if st.toggle() && !ts.on {
		st.clear(t)
		return
	}
	st.apply(t, ts.dialect, ts.value)
}

func (s *Surface) armTyping(ts typingStyle) {
	s.typing = slices.DeleteFunc(s.typing, func(x typingStyle) bool { return x.cmd == ts.cmd })
	s.typing = append(s.typing, ts)
}

func (s *Surface) typingFor(cmd Command) (typingStyle, bool) {
	for _, ts := range s.typing {
		if ts.cmd == cmd {
			return ts, true
		}
	}
	return typingStyle{}, false
}

// contextNode returns the node whose ancestors define formatting at p.
func contextNode(p Point) *html.Node {
	p = normalizeCaret(p)
	if p.Node.Type == html.TextNode {
		return p.Node
	}
	if c := childAt(p.Node, p.Offset); c != nil {
		return c
	}
	return p.Node
}

func (s *Surface) queryInline(cmd Command, st inlineStyle) (bool, string) {
	r, ok := s.Selection()
	if !ok {
		return false, ""
	}
	if r.Collapsed() {
		if ts, ok := s.typingFor(cmd); ok {
			return ts.on || !st.toggle(), ts.value
		}
		w, v := st.lookup(contextNode(r.Start))
		return w != nil, v
	}
	texts := overlapping(s.root, r)
	if len(texts) == 0 {
		w, v := st.lookup(contextNode(r.Start))
		return w != nil, v
	}
	var first string
	for i, t := range texts {
		w, v := st.lookup(t.Parent)
		if w == nil {
			return false, ""
		}
		if i == 0 {
			first = v
		}
	}
	return true, first
}

// execInline applies or removes a character format on the selection. On a
// collapsed selection the format is armed for the next typed text.
func (s *Surface) execInline(cmd Command, value string, d Dialect) error {
	st := inlineStyles[cmd]
	if !st.toggle() {
		v, err := normalizeInlineValue(cmd, value, d)
		if err != nil {
			return err
		}
		value = v
	}
	r, _ := s.Selection()
	if r.Collapsed() {
		on, _ := s.queryInline(cmd, st)
		s.armTyping(typingStyle{cmd: cmd, on: !on, value: value, dialect: d})
		return nil
	}
	on, _ := s.queryInline(cmd, st)
	sb, eb := splitRange(r)
	texts := textsIn(s.root, sb.point(), eb.point())
	for _, t := range texts {
		switch {
		case !st.toggle():
			st.apply(t, d, value)
		case on:
			st.clear(t)
		default:
			st.apply(t, d, value)
		}
	}
	s.finishInline(texts)
	return nil
}

func (s *Surface) finishInline(texts []*html.Node) {
	mergeAdjacent(s.root)
	pruneEmpty(s.root)
	if len(texts) == 0 {
		return
	}
	last := texts[len(texts)-1]
	s.setRange(Point{Node: texts[0]}, Point{Node: last, Offset: maxOffset(last)})
}

func normalizeInlineValue(cmd Command, value string, d Dialect) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ErrInvalidValue
	}
	if cmd != FontSize {
		return value, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return "", ErrInvalidValue
	}
	n = min(max(n, 1), 7)
	if d == Styled {
		return cssFontSizes[n-1], nil
	}
	return strconv.Itoa(n), nil
}

// legacyFontSize maps a font-size value back to the 1..7 scale.
func legacyFontSize(v string) string {
	if i := slices.Index(cssFontSizes, strings.ToLower(v)); i >= 0 {
		return strconv.Itoa(i + 1)
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 7 {
		return v
	}
	return ""
}

// removeFormatting unwraps every formatting element above the selected text
// and disarms the typing style.
func (s *Surface) removeFormatting() {
	s.typing = nil
	r, _ := s.Selection()
	if r.Collapsed() {
		return
	}
	sb, eb := splitRange(r)
	texts := textsIn(s.root, sb.point(), eb.point())
	for _, t := range texts {
		for {
			w := Closest(t.Parent, nil, func(n *html.Node) bool {
				return IsBlock(n) || formatAtoms[n.DataAtom]
			})
			if w == nil || IsBlock(w) {
				break
			}
			isolate(w, t)
			unwrap(w)
		}
	}
	s.finishInline(texts)
}

// createLink wraps the selection in an anchor, or inserts the URL as a link
// at a collapsed caret.
func (s *Surface) createLink(href string) error {
	href = strings.TrimSpace(href)
	if href == "" {
		return ErrInvalidValue
	}
	r, _ := s.Selection()
	if r.Collapsed() {
		a := NewElement("a", html.Attribute{Key: "href", Val: href})
		a.AppendChild(NewText(href))
		return s.InsertNodes(a)
	}
	anchor := inlineStyle{tags: []atom.Atom{atom.A}}
	sb, eb := splitRange(r)
	texts := textsIn(s.root, sb.point(), eb.point())
	for _, t := range texts {
		anchor.clear(t)
		wrap(t, NewElement("a", html.Attribute{Key: "href", Val: href}))
	}
	s.finishInline(texts)
	var links []*html.Node
	for _, t := range texts {
		if a := Closest(t, nil, func(n *html.Node) bool { return isElement(n, atom.A) }); a != nil && !slices.Contains(links, a) {
			links = append(links, a)
		}
	}
	s.inserted = links
	return nil
}
