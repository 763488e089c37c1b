package editor

import (
	"bytes"
	"context"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/iw2rmb/plume/surface"
)

const pasteSettleDelay = 10 * time.Millisecond

// KeyDown handles a key pressed while the surface has focus and performs its
// editing action. It reports false for keys left to the host, such as Tab
// without CanTab.
func (c *Controller) KeyDown(ev KeyEvent) bool {
	if c.focus != FocusSurface {
		return false
	}
	if f := c.armedKeyDown; f != nil {
		c.armedKeyDown = nil
		f()
	}

	switch ev.Key {
	case KeyTab:
		if !c.cfg.CanTab || c.rawView {
			return false
		}
		if ev.Shift {
			c.Execute(Outdent, "")
		} else {
			c.Execute(Indent, "")
		}
		return true
	case KeyBackspace:
		if c.textBuffer != "" {
			r := []rune(c.textBuffer)
			c.textBuffer = string(r[:len(r)-1])
		}
	case KeyEnter, KeySpace:
		if !c.rawView && ValidURL(c.textBuffer) {
			c.links.convert(true)
		}
		c.textBuffer = ""
	default:
		if text, ok := ev.Text(); ok {
			c.textBuffer += text
		}
	}
	return c.defaultKey(ev)
}

// defaultKey applies the editing action of a key.
func (c *Controller) defaultKey(ev KeyEvent) bool {
	var err error
	switch ev.Key {
	case KeyEnter:
		if ev.Shift || c.rawView {
			err = c.surf.InsertLineBreak()
		} else {
			err = c.surf.InsertParagraph()
		}
	case KeyBackspace:
		err = c.surf.DeleteBackward()
	case KeyDelete:
		err = c.surf.DeleteForward()
	case KeyLeft:
		c.surf.Move(surface.Left, ev.Shift)
	case KeyRight:
		c.surf.Move(surface.Right, ev.Shift)
	case KeyUp:
		c.surf.Move(surface.Up, ev.Shift)
	case KeyDown:
		c.surf.Move(surface.Down, ev.Shift)
	case KeyHome:
		c.surf.Move(surface.LineStart, ev.Shift)
	case KeyEnd:
		c.surf.Move(surface.LineEnd, ev.Shift)
	default:
		text, ok := ev.Text()
		if !ok {
			return false
		}
		err = c.surf.InsertText(text)
	}
	if err != nil {
		c.log.Debug("Key action", "key", ev.Key, "err", err)
	}
	return true
}

// KeyUp handles a key release. Escape closes every popup wherever focus is;
// inside the surface the selection is captured and the toolbar refreshed.
func (c *Controller) KeyUp(ev KeyEvent) {
	if c.popups.globalKey(ev) {
		return
	}
	if c.focus != FocusSurface {
		return
	}
	c.sel.capture()
	if ev.Key == KeyEnter && c.cfg.OnEnter != nil {
		c.cfg.OnEnter(ev)
	}
	c.refreshToolbar()
}

// Key is KeyDown followed by KeyUp.
func (c *Controller) Key(ev KeyEvent) bool {
	handled := c.KeyDown(ev)
	c.KeyUp(ev)
	return handled
}

// PopupKeyDown handles a key pressed inside popup id. Escape closes it and
// Enter runs its primary action.
func (c *Controller) PopupKeyDown(id string, ev KeyEvent) bool {
	return c.popups.keyDown(id, ev)
}

// Click handles a pointer click inside the surface. The host moves the
// selection before calling it. Ctrl+click on a converted link opens it.
func (c *Controller) Click(ev ClickEvent) {
	c.focusSurface()
	c.popups.clickOutside()
	c.sel.capture()
	if ev.Node != nil && ev.Ctrl {
		if a, ok := c.links.linkAt(ev.Node); ok {
			if href, _ := surface.Attr(a, "href"); href != "" && c.cfg.OpenURL != nil {
				c.cfg.OpenURL(href)
			}
		}
	}
	if c.surf.Text() != "" {
		c.refreshToolbar()
	} else {
		c.bar.refreshValues()
	}
}

// ClickOutside handles a click outside the widget. Popups close and the
// change commit is armed again.
func (c *Controller) ClickOutside() {
	c.popups.clickOutside()
	if c.focus == FocusOutside {
		c.scheduleCommit()
		return
	}
	c.SetFocus(FocusOutside)
}

// LinkTarget returns the href of the converted link around the node, for
// hosts that show a pointer while Ctrl is held.
func (c *Controller) LinkTarget(ev ClickEvent) (string, bool) {
	if ev.Node == nil || !ev.Ctrl {
		return "", false
	}
	a, ok := c.links.linkAt(ev.Node)
	if !ok {
		return "", false
	}
	return surface.Attr(a, "href")
}

func (c *Controller) refreshToolbar() {
	if c.rawView {
		return
	}
	c.bar.refreshValues()
	c.bar.recompute()
}

// Paste handles a clipboard payload delivered to the surface.
func (c *Controller) Paste(ev PasteEvent) {
	c.focusSurface()
	if _, ok := c.surf.Selection(); !ok {
		c.sel.restore(nil)
	}

	if c.cfg.OnPaste != nil {
		if content := c.cfg.OnPaste(ev); content != "" {
			c.exec.run(InsertHTML, content)
			return
		}
	}
	if c.rawView {
		c.insertPlain(firstNonEmpty(ev.Text, ev.HTML))
		return
	}

	native := true
	if len(ev.Image) > 0 {
		native = false
		c.pasteImage(ev)
	}
	if c.cfg.SanitizePaste && ev.HTML != "" {
		native = false
		if text := ScrubHTML(ev.HTML); text != "" {
			if err := c.surf.InsertNodes(surface.NewText(text)); err != nil {
				c.log.Debug("Insert sanitized paste", "err", err)
			}
		}
	}
	if url := strings.TrimSpace(ev.Text); url != "" && ValidURL(url) {
		c.lookupMeta(url)
	}
	if native {
		switch {
		case ev.HTML != "":
			c.exec.run(InsertHTML, ev.HTML)
		case ev.Text != "":
			c.insertPlain(ev.Text)
		}
	}

	c.sched.AfterFunc(pasteSettleDelay, func() {
		c.pruneInlinePosition()
		c.links.convert(true)
		if c.cfg.AfterPaste != nil {
			c.cfg.AfterPaste(ev)
		}
	})
}

// insertPlain inserts text, turning newlines into line breaks.
func (c *Controller) insertPlain(text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			if err := c.surf.InsertLineBreak(); err != nil {
				c.log.Debug("Insert pasted line", "err", err)
				return
			}
		}
		if line == "" {
			continue
		}
		if err := c.surf.InsertText(line); err != nil {
			c.log.Debug("Insert pasted text", "err", err)
			return
		}
	}
}

// pasteImage inserts a pasted image, uploaded when an uploader is
// configured.
func (c *Controller) pasteImage(ev PasteEvent) {
	encoded, raw, err := encodeImage(ev.Image, ev.ImageType, c.cfg.MaxPasteImageWidth)
	if err != nil {
		c.log.Warn("Encode pasted image", "err", err)
		return
	}
	up := c.cfg.Uploader
	if up == nil {
		c.insertImage(encoded)
		if c.cfg.UploadOnPaste {
			c.Attach(File{Name: pastedImageName(ev.ImageType), Size: int64(len(raw)), Handle: bytes.NewReader(raw)})
		}
		return
	}
	c.async(func(ctx context.Context) func() {
		ref, err := up.UploadImage(ctx, encoded)
		return func() {
			if err != nil {
				c.log.Warn("Upload pasted image", "err", err)
				c.insertImage(encoded)
				return
			}
			c.insertImage(ref)
		}
	})
}

func (c *Controller) insertImage(src string) {
	if _, ok := c.surf.Selection(); !ok {
		c.sel.restore(nil)
	}
	c.exec.run(InsertImage, src)
}

// pruneInlinePosition neutralizes inline positioning so pasted markup cannot
// escape the surface.
func (c *Controller) pruneInlinePosition() {
	surface.Walk(c.surf.Root(), func(n *html.Node) bool {
		if v, ok := surface.Style(n, "position"); ok && v != "" && v != "static" {
			c.surf.SetStyle(n, "position", "static")
		}
		return false
	})
}
