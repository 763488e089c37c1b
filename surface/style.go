package surface

import (
	"strings"

	"golang.org/x/net/html"
)

type declaration struct {
	prop, val string
}

func parseStyle(raw string) []declaration {
	var out []declaration
	for _, part := range strings.Split(raw, ";") {
		prop, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.TrimSpace(val)
		if prop == "" {
			continue
		}
		out = append(out, declaration{prop: prop, val: val})
	}
	return out
}

func formatStyle(decls []declaration) string {
	var sb strings.Builder
	for i, d := range decls {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(d.prop)
		sb.WriteString(": ")
		sb.WriteString(d.val)
		sb.WriteByte(';')
	}
	return sb.String()
}

// Style returns the inline CSS value of prop on n.
func Style(n *html.Node, prop string) (string, bool) {
	raw, ok := Attr(n, "style")
	if !ok {
		return "", false
	}
	for _, d := range parseStyle(raw) {
		if d.prop == prop {
			return d.val, true
		}
	}
	return "", false
}

func setStyle(n *html.Node, prop, val string) {
	raw, _ := Attr(n, "style")
	decls := parseStyle(raw)
	found := false
	for i := range decls {
		if decls[i].prop == prop {
			decls[i].val = val
			found = true
		}
	}
	if !found {
		decls = append(decls, declaration{prop: prop, val: val})
	}
	setAttr(n, "style", formatStyle(decls))
}

func removeStyle(n *html.Node, prop string) {
	raw, ok := Attr(n, "style")
	if !ok {
		return
	}
	var keep []declaration
	for _, d := range parseStyle(raw) {
		if d.prop != prop {
			keep = append(keep, d)
		}
	}
	if len(keep) == 0 {
		removeAttr(n, "style")
		return
	}
	setAttr(n, "style", formatStyle(keep))
}

// removeStyleToken drops one space separated token from a property value
// such as text-decoration.
func removeStyleToken(n *html.Node, prop, token string) {
	v, ok := Style(n, prop)
	if !ok {
		return
	}
	var keep []string
	for _, f := range strings.Fields(v) {
		if f != token {
			keep = append(keep, f)
		}
	}
	if len(keep) == 0 {
		removeStyle(n, prop)
		return
	}
	setStyle(n, prop, strings.Join(keep, " "))
}
