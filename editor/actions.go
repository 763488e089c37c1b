package editor

import (
	"strconv"

	"golang.org/x/net/html"

	"github.com/iw2rmb/plume/surface"
)

// Palette is the set of colors offered by the color popups.
var Palette = []string{
	"#000", "#444", "#666", "#999", "#ccc", "#eee", "#f3f3f3", "#fff",
	"#f00", "#f90", "#ff0", "#0f0", "#0ff", "#00f", "#90f", "#f0f",
	"#e06666", "#f6b26b", "#ffd966", "#93c47d", "#76a5af", "#6fa8dc", "#8e7cc3", "#c27ba0",
}

const (
	defaultLinkURL   = "http://"
	defaultTableSize = "3"
	inheritedSizeVal = "3"
)

// addPopups registers the popup of every toolbar control that needs one.
func (c *Controller) addPopups() {
	for _, ctl := range c.bar.controls {
		if ctl.Custom {
			continue
		}
		switch ctl.Command {
		case Link:
			c.popups.add(c.linkPopup())
		case Image:
			c.popups.add(c.imagePopup())
		case Table:
			c.popups.add(c.tablePopup())
		case FontName:
			c.popups.add(c.fontNamePopup())
		case FontSize:
			c.popups.add(c.fontSizePopup())
		case FontFormat:
			c.popups.add(c.fontFormatPopup())
		case ForeColor, HiliteColor:
			c.popups.add(c.colorPopup(ctl.Command))
		}
	}
}

func (c *Controller) linkPopup() popupSpec {
	return popupSpec{
		id: string(Link),
		fields: []Field{
			{Name: "url", Label: "URL", Default: defaultLinkURL, Required: true},
			{Name: "text", Label: "Text"},
			{Name: "newWindow", Label: "Open in new window", Default: "true", Checkbox: true},
		},
		prepare: func(p *popup) {
			r, ok := c.sel.last()
			if !ok {
				return
			}
			for i := range p.fields {
				if p.fields[i].Name == "text" {
					p.fields[i].Value = c.surf.RangeText(r)
				}
			}
		},
		submit: c.insertLink,
	}
}

// insertLink links the saved selection, or inserts the URL at the caret.
func (c *Controller) insertLink(p *popup) error {
	url := p.value("url")
	if url == "" || url == defaultLinkURL {
		p.invalidate("url")
		return ErrRequiredField
	}
	c.focusSurface()
	c.sel.restore(nil)
	if !c.exec.run(CreateLink, url) {
		return nil
	}
	links := c.surf.Inserted()
	for _, a := range links {
		if p.checked("newWindow") {
			c.surf.SetAttr(a, "target", "_blank")
		}
		c.links.markParsed(a)
	}
	if text := p.value("text"); text != "" && len(links) == 1 && surface.TextContent(links[0]) != text {
		c.surf.SetNodeText(links[0], text)
	}
	if len(links) > 0 {
		if err := c.surf.CollapseAfter(links[len(links)-1]); err != nil {
			c.log.Debug("Collapse after link", "err", err)
		}
	}
	c.sel.capture()
	if ValidURL(url) {
		c.lookupMeta(url)
	}
	return nil
}

func (c *Controller) imagePopup() popupSpec {
	return popupSpec{
		id: string(Image),
		fields: []Field{
			{Name: "src", Label: "Image URL", Required: true},
			{Name: "width", Label: "Width", Numeric: true},
			{Name: "height", Label: "Height", Numeric: true},
		},
		submit: func(p *popup) error {
			c.focusSurface()
			c.sel.restore(nil)
			if !c.exec.run(InsertImage, p.value("src")) {
				return nil
			}
			for _, img := range c.surf.Inserted() {
				for _, dim := range []string{"width", "height"} {
					if v := p.value(dim); v != "" {
						c.surf.SetStyle(img, dim, v+"px")
					}
				}
			}
			c.sel.capture()
			return nil
		},
	}
}

func (c *Controller) tablePopup() popupSpec {
	return popupSpec{
		id: string(Table),
		fields: []Field{
			{Name: "cols", Label: "Columns", Default: defaultTableSize, Required: true, Numeric: true},
			{Name: "rows", Label: "Rows", Default: defaultTableSize, Required: true, Numeric: true},
		},
		submit: func(p *popup) error {
			cols, _ := strconv.Atoi(p.value("cols"))
			rows, _ := strconv.Atoi(p.value("rows"))
			c.focusSurface()
			c.sel.restore(nil)
			if err := c.surf.InsertNodes(newTable(rows, cols)); err != nil {
				c.log.Debug("Insert table", "err", err)
				return nil
			}
			c.sel.capture()
			return nil
		},
	}
}

// newTable builds an empty bordered table.
func newTable(rows, cols int) *html.Node {
	table := surface.NewElement("table",
		html.Attribute{Key: "cellspacing", Val: "0"},
		html.Attribute{Key: "style", Val: "width: 100%;"},
	)
	body := surface.NewElement("tbody")
	table.AppendChild(body)
	for range rows {
		tr := surface.NewElement("tr")
		for range cols {
			tr.AppendChild(surface.NewElement("td", html.Attribute{Key: "style", Val: "border: 1px solid #ddd;"}))
		}
		body.AppendChild(tr)
	}
	return table
}

func (c *Controller) fontNamePopup() popupSpec {
	choices := []Choice{{Label: inheritedFont}}
	for _, f := range c.cfg.FontNames {
		choices = append(choices, Choice{Label: f, Value: f})
	}
	return popupSpec{
		id:      string(FontName),
		fields:  []Field{{Name: "font", Label: "Font"}},
		choices: choices,
		submit: func(p *popup) error {
			v := p.value("font")
			c.applyFont(FontName, v, fontNameLabel(v))
			return nil
		},
	}
}

func (c *Controller) fontSizePopup() popupSpec {
	choices := []Choice{{Label: inheritedSize, Value: inheritedSizeVal}}
	for i, l := range FontSizeLabels {
		choices = append(choices, Choice{Label: l, Value: strconv.Itoa(i + 1)})
	}
	return popupSpec{
		id:      string(FontSize),
		fields:  []Field{{Name: "size", Label: "Size", Required: true, Numeric: true}},
		choices: choices,
		submit: func(p *popup) error {
			v := p.value("size")
			if n, _ := strconv.Atoi(v); n > len(FontSizeLabels) {
				p.invalidate("size")
				return ErrRequiredField
			}
			c.applyFont(FontSize, v, fontSizeLabel(v))
			return nil
		},
	}
}

func (c *Controller) fontFormatPopup() popupSpec {
	choices := make([]Choice, 0, len(FormatLabels))
	for _, f := range FormatLabels {
		choices = append(choices, Choice{Label: f.Label, Value: f.Tag})
	}
	return popupSpec{
		id:      string(FontFormat),
		fields:  []Field{{Name: "format", Label: "Format", Required: true}},
		choices: choices,
		submit: func(p *popup) error {
			v := p.value("format")
			c.applyFont(FontFormat, v, formatLabel(v))
			return nil
		},
	}
}

// applyFont labels the control and runs the font command once the surface
// has focus again. On an empty surface the command waits for the next
// key-down so the first typed character picks it up.
func (c *Controller) applyFont(cmd Command, value, label string) {
	if ctl := c.bar.find(string(cmd)); ctl != nil {
		ctl.Value = label
	}
	if cmd == FontName && value == "" {
		c.focusSurface()
		return
	}
	run := func() {
		if cmd == FontFormat {
			c.exec.run(RemoveFormat, "")
			c.exec.run(FormatBlock, value)
			return
		}
		c.exec.run(cmd, value)
	}
	c.whenFocused(func() {
		c.sel.restore(nil)
		if c.Empty() {
			c.armedKeyDown = run
			return
		}
		c.sched.AfterFunc(0, run)
	})
}

func (c *Controller) colorPopup(cmd Command) popupSpec {
	choices := make([]Choice, 0, len(Palette))
	for _, col := range Palette {
		choices = append(choices, Choice{Label: col, Value: col})
	}
	return popupSpec{
		id:      string(cmd),
		fields:  []Field{{Name: "color", Label: "Color", Default: defaultColors[cmd], Required: true}},
		choices: choices,
		submit: func(p *popup) error {
			c.applyColor(cmd, p.value("color"))
			return nil
		},
	}
}

// applyColor colors the saved selection. A collapsed selection is colored
// from the next key-down on.
func (c *Controller) applyColor(cmd Command, color string) {
	if ctl := c.bar.find(string(cmd)); ctl != nil {
		ctl.Value = color
	}
	r, ok := c.sel.last()
	c.focusSurface()
	c.sel.restore(nil)
	if !ok || r.Collapsed() {
		c.armedKeyDown = func() { c.exec.run(cmd, color) }
		return
	}
	c.exec.run(cmd, color)
	c.sel.capture()
}

// whenFocused runs f once the surface holds focus, right away if it
// already does.
func (c *Controller) whenFocused(f func()) {
	if c.focus == FocusSurface {
		f()
		return
	}
	c.onNextFocus = f
	c.focusSurface()
}

// OpenPopup opens the popup id, closing the others of its group.
func (c *Controller) OpenPopup(id string) error {
	c.sel.capture()
	return c.popups.open(id)
}

// ClosePopup closes the popup id.
func (c *Controller) ClosePopup(id string) error { return c.popups.close(id) }

// SetPopupField sets a field of popup id.
func (c *Controller) SetPopupField(id, name, value string) error {
	return c.popups.setField(id, name, value)
}

// SubmitPopup runs the primary action of popup id. It returns
// ErrRequiredField and keeps the popup open when a field is invalid.
func (c *Controller) SubmitPopup(id string) error { return c.popups.submit(id) }

// ChoosePopup submits the i-th predefined choice of popup id.
func (c *Controller) ChoosePopup(id string, i int) error { return c.popups.choose(id, i) }
