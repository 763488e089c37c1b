package editor

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"mvdan.cc/xurls/v2"

	"github.com/iw2rmb/plume/internal/grapheme"
	"github.com/iw2rmb/plume/surface"
)

var (
	strictURL = regexp.MustCompile(`^(?:https?://)[\w.-]+(?:\.[\w.-]+)+[\w\-._~:/?#\[\]@!$&'()*+,;=.]+$`)
	relaxed   = xurls.Relaxed()
)

// ValidURL reports whether s is an absolute http(s) URL with a dotted host.
func ValidURL(s string) bool { return strictURL.MatchString(s) }

// linkConverter turns URLs and email addresses typed as text into anchors.
type linkConverter struct {
	surf *surface.Surface
	// parsed holds anchors that are never examined again.
	parsed map[*html.Node]bool
}

func newLinkConverter(surf *surface.Surface) *linkConverter {
	return &linkConverter{surf: surf, parsed: map[*html.Node]bool{}}
}

func (lc *linkConverter) markParsed(a *html.Node) { lc.parsed[a] = true }

func (lc *linkConverter) isParsed(a *html.Node) bool { return lc.parsed[a] }

// markAll marks every anchor of the document parsed.
func (lc *linkConverter) markAll() {
	clear(lc.parsed)
	for _, a := range anchors(lc.surf.Root()) {
		lc.parsed[a] = true
	}
}

// convert wraps matches in anchors, then settles every unparsed anchor: email
// links and heuristic matches failing ValidURL go back to text, the rest
// open in a new window. With sel the caret lands after the last converted
// link. It returns the converted anchors.
func (lc *linkConverter) convert(sel bool) []*html.Node {
	linkified := lc.linkify()

	var converted []*html.Node
	for _, a := range anchors(lc.surf.Root()) {
		if lc.parsed[a] {
			continue
		}
		href, _ := surface.Attr(a, "href")
		email := strings.Contains(href, "mailto")
		falsePositive := linkified[a] && !ValidURL(firstNonEmpty(href, surface.TextContent(a)))
		if href != "" && (email || falsePositive) {
			lc.surf.ReplaceWithText(a)
			continue
		}
		lc.surf.SetAttr(a, "target", "_blank")
		lc.parsed[a] = true
		converted = append(converted, a)
	}
	if sel && len(converted) > 0 {
		_ = lc.surf.CollapseAfter(converted[len(converted)-1])
	}
	return converted
}

// linkify wraps URL and email matches found in text outside anchors.
func (lc *linkConverter) linkify() map[*html.Node]bool {
	var texts []*html.Node
	surface.Walk(lc.surf.Root(), func(n *html.Node) bool {
		if n.Type == html.ElementNode && skipLinkify(n.DataAtom) {
			return true
		}
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) != "" {
			texts = append(texts, n)
		}
		return false
	})

	out := map[*html.Node]bool{}
	for _, t := range texts {
		matches := relaxed.FindAllStringIndex(t.Data, -1)
		// Right to left so the head of t keeps its offsets.
		for i := len(matches) - 1; i >= 0; i-- {
			m := matches[i]
			text := t.Data[m[0]:m[1]]
			a := surface.NewElement("a", html.Attribute{Key: "href", Val: hrefFor(text)})
			from := grapheme.Count(t.Data[:m[0]])
			to := from + grapheme.Count(text)
			lc.surf.WrapText(t, from, to, a)
			out[a] = true
		}
	}
	return out
}

func skipLinkify(a atom.Atom) bool {
	switch a {
	case atom.A, atom.Script, atom.Style, atom.Pre, atom.Code:
		return true
	}
	return false
}

// hrefFor turns a match into a link target.
func hrefFor(match string) string {
	if strings.Contains(match, "://") || strings.HasPrefix(match, "mailto:") {
		return match
	}
	if strings.Contains(match, "@") && !strings.Contains(match, "/") {
		return "mailto:" + match
	}
	return "http://" + match
}

// linkAt returns the converted anchor containing n.
func (lc *linkConverter) linkAt(n *html.Node) (*html.Node, bool) {
	a := surface.Closest(n, lc.surf.Root(), func(x *html.Node) bool {
		return x.Type == html.ElementNode && x.DataAtom == atom.A
	})
	if a == nil {
		return nil, false
	}
	return a, lc.isParsed(a)
}

func anchors(root *html.Node) []*html.Node {
	var out []*html.Node
	surface.Walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			out = append(out, n)
		}
		return false
	})
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
