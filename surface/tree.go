package surface

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var blockAtoms = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Blockquote: true, atom.Body: true,
	atom.Div: true, atom.Footer: true, atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true, atom.Header: true, atom.Hr: true,
	atom.Li: true, atom.Ol: true, atom.P: true, atom.Pre: true, atom.Section: true,
	atom.Table: true, atom.Tbody: true, atom.Td: true, atom.Tfoot: true, atom.Th: true,
	atom.Thead: true, atom.Tr: true, atom.Ul: true,
}

// formatAtoms are inline elements that only carry presentation.
var formatAtoms = map[atom.Atom]bool{
	atom.B: true, atom.Strong: true, atom.I: true, atom.Em: true, atom.U: true,
	atom.S: true, atom.Strike: true, atom.Del: true, atom.Font: true, atom.Span: true,
	atom.Sub: true, atom.Sup: true,
}

// IsBlock reports whether n is a block-level element.
func IsBlock(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && blockAtoms[n.DataAtom]
}

func isElement(n *html.Node, atoms ...atom.Atom) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	return slices.Contains(atoms, n.DataAtom)
}

func isText(n *html.Node) bool { return n != nil && n.Type == html.TextNode }

func isHeading(n *html.Node) bool {
	return isElement(n, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6)
}

func isList(n *html.Node) bool { return isElement(n, atom.Ul, atom.Ol) }

// NewElement returns a detached element for tag.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	tag = strings.ToLower(tag)
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// NewText returns a detached text node.
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func shallowClone(n *html.Node) *html.Node {
	return &html.Node{
		Type:      n.Type,
		Data:      n.Data,
		DataAtom:  n.DataAtom,
		Namespace: n.Namespace,
		Attr:      slices.Clone(n.Attr),
	}
}

func childIndex(n *html.Node) int {
	i := 0
	for c := n.PrevSibling; c != nil; c = c.PrevSibling {
		i++
	}
	return i
}

func childAt(p *html.Node, i int) *html.Node {
	c := p.FirstChild
	for ; c != nil && i > 0; i-- {
		c = c.NextSibling
	}
	return c
}

func childCount(p *html.Node) int {
	n := 0
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		n++
	}
	return n
}

func insertAfter(n, ref *html.Node) {
	ref.Parent.InsertBefore(n, ref.NextSibling)
}

func isAncestor(a, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == a {
			return true
		}
	}
	return false
}

// branchOf returns the child of ancestor that is or contains n.
func branchOf(ancestor, n *html.Node) *html.Node {
	for c := n; c != nil; c = c.Parent {
		if c.Parent == ancestor {
			return c
		}
	}
	return nil
}

// Walk visits n and its descendants in document order. Returning true from f
// skips the children of the visited node.
func Walk(n *html.Node, f func(*html.Node) bool) {
	if f(n) {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		Walk(c, f)
		c = next
	}
}

// Closest returns the nearest ancestor-or-self of n matching f, not crossing
// stop.
func Closest(n, stop *html.Node, f func(*html.Node) bool) *html.Node {
	for p := n; p != nil && p != stop; p = p.Parent {
		if f(p) {
			return p
		}
	}
	return nil
}

// TextContent returns the concatenated text of n's subtree.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return false
	})
	return sb.String()
}

func textNodes(n *html.Node) []*html.Node {
	var out []*html.Node
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			out = append(out, c)
		}
		return false
	})
	return out
}

// Attr returns the value of attribute key on n.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	n.Attr = slices.DeleteFunc(n.Attr, func(a html.Attribute) bool { return a.Key == key })
}

// unwrap replaces n with its children.
func unwrap(n *html.Node) {
	p := n.Parent
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		p.InsertBefore(c, n)
	}
	p.RemoveChild(n)
}

// wrap inserts w in place of n and moves n into it.
func wrap(n, w *html.Node) {
	n.Parent.InsertBefore(w, n)
	n.Parent.RemoveChild(n)
	w.AppendChild(n)
}

func moveChildren(from, to *html.Node) {
	for c := from.FirstChild; c != nil; c = from.FirstChild {
		from.RemoveChild(c)
		to.AppendChild(c)
	}
}

func rename(n *html.Node, tag string) {
	n.Data = tag
	n.DataAtom = atom.Lookup([]byte(tag))
}

// splitAround moves the siblings before and after child into clones of p so
// that p is left holding child alone.
func splitAround(p, child *html.Node) {
	if child.NextSibling != nil {
		after := shallowClone(p)
		for c := child.NextSibling; c != nil; c = child.NextSibling {
			p.RemoveChild(c)
			after.AppendChild(c)
		}
		insertAfter(after, p)
	}
	if child.PrevSibling != nil {
		before := shallowClone(p)
		for c := p.FirstChild; c != child; c = p.FirstChild {
			p.RemoveChild(c)
			before.AppendChild(c)
		}
		p.Parent.InsertBefore(before, p)
	}
}

// isolate splits every element from n's parent up to w so that w holds only
// the branch leading to n.
func isolate(w, n *html.Node) {
	child := n
	for p := n.Parent; p != nil; p = p.Parent {
		splitAround(p, child)
		if p == w {
			return
		}
		child = p
	}
}

// splitAt splits ancestor at the boundary and returns the new element that
// holds everything after it.
func splitAt(ancestor *html.Node, b boundary) *html.Node {
	node, before := b.parent, b.before
	for {
		clone := shallowClone(node)
		for c := before; c != nil; {
			next := c.NextSibling
			node.RemoveChild(c)
			clone.AppendChild(c)
			c = next
		}
		insertAfter(clone, node)
		if node == ancestor {
			return clone
		}
		before = clone
		node = node.Parent
	}
}

func sameShape(a, b *html.Node) bool {
	if a.Type != html.ElementNode || b.Type != html.ElementNode || a.Data != b.Data || len(a.Attr) != len(b.Attr) {
		return false
	}
	for _, x := range a.Attr {
		if v, ok := Attr(b, x.Key); !ok || v != x.Val {
			return false
		}
	}
	return true
}

// mergeAdjacent joins neighbouring formatting elements with identical tags and
// attributes.
func mergeAdjacent(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if next != nil && (formatAtoms[c.DataAtom] || c.DataAtom == atom.A) && sameShape(c, next) {
			moveChildren(next, c)
			n.RemoveChild(next)
			continue
		}
		c = next
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			mergeAdjacent(c)
		}
	}
}

// pruneEmpty removes formatting elements and lists left without children.
func pruneEmpty(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode {
			pruneEmpty(c)
			if c.FirstChild == nil && (formatAtoms[c.DataAtom] || c.DataAtom == atom.A || isList(c)) {
				n.RemoveChild(c)
			}
		}
		c = next
	}
}

func isWhitespace(s string) bool {
	return strings.TrimSpace(s) == ""
}
