package tui

import (
	"golang.org/x/net/html"

	"github.com/iw2rmb/plume/surface"
)

// pointAt maps a cell in document coordinates to a caret stop and the node
// under it. (0,0) is the top-left cell of the first visual row.
//
// Rows and columns are clamped into the document; clicks left of a row land
// on its first stop and clicks past its end on its last.
func (l docLayout) pointAt(x, y int) (surface.Point, *html.Node, bool) {
	if len(l.rows) == 0 {
		return surface.Point{}, nil, false
	}
	y = clampInt(y, 0, len(l.rows)-1)
	r := l.rows[y]
	ll := l.lines[r.line]
	if len(ll.stops) == 0 {
		return surface.Point{}, nil, false
	}

	col := r.first
	var node *html.Node
	if x >= r.x {
		cell := r.x
		col = r.end
		for j := r.first; j < r.end; j++ {
			g := ll.glyphs[j]
			if x < cell+max(g.width, 1) {
				col, node = j, g.node
				break
			}
			cell += g.width
		}
	}
	if col == r.end && !r.last && r.end > r.first {
		// stop r.end draws on the next row
		col = r.end - 1
		node = ll.glyphs[col].node
	}
	col = clampInt(col, 0, len(ll.stops)-1)
	return ll.stops[col], node, true
}

// rowOf returns the visual row holding the caret stop p.
func (l docLayout) rowOf(p pos) int {
	for i, r := range l.rows {
		if r.line != p.line {
			continue
		}
		if p.col < r.end || r.last {
			return i
		}
	}
	return 0
}

type rect struct{ x, y, w int }

// geometry is the widget layout shared with the controller, which reads it
// when it opens a popup.
type geometry struct {
	controls     map[string]rect
	popups       map[string]int
	surfaceWidth int
}

func newGeometry() *geometry {
	return &geometry{controls: map[string]rect{}, popups: map[string]int{}}
}

func (g *geometry) ControlOffset(id string) int { return g.controls[id].x }

func (g *geometry) PopupWidth(id string) int {
	if w, ok := g.popups[id]; ok {
		return w
	}
	return defaultPopupWidth
}

func (g *geometry) SurfaceWidth() int { return g.surfaceWidth }

// controlAt returns the toolbar control at a toolbar cell.
func (g *geometry) controlAt(x, y int) (string, bool) {
	for id, r := range g.controls {
		if y == r.y && x >= r.x && x < r.x+r.w {
			return id, true
		}
	}
	return "", false
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
