package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gofrs/uuid"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/iw2rmb/plume/internal/grapheme"
	"github.com/iw2rmb/plume/surface"
)

// Controller keeps one editing session coherent. All methods must be called
// from the goroutine that drains the Scheduler.
type Controller struct {
	cfg   Config
	log   *slog.Logger
	sched Scheduler

	surf   *surface.Surface
	exec   *executor
	sel    *selectionTracker
	bar    *toolbar
	popups *popupController
	links  *linkConverter
	files  *attachments

	focus FocusTarget

	// orig is the content when the current edit session started.
	orig      string
	hasOrig   bool
	blurTimer Timer

	// textBuffer holds the word typed since the last space or Enter.
	textBuffer string
	// onNextFocus replaces the default focus handling once, after the
	// toolbar state is reconciled.
	onNextFocus func()
	// armedKeyDown runs on the next key-down inside the surface.
	armedKeyDown func()

	rawView        bool
	expanded       bool
	expandSnapshot string

	metaCards []MetaCard

	ctx      context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup
}

// New returns a controller holding cfg.Value.
func New(cfg Config) *Controller {
	cfg = normalizeConfig(cfg)
	surf := surface.New("")
	exec := &executor{surf: surf, caps: newCapabilityTable(cfg.Capabilities), log: cfg.Logger}
	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		cfg:    cfg,
		log:    cfg.Logger,
		sched:  cfg.Scheduler,
		surf:   surf,
		exec:   exec,
		sel:    &selectionTracker{surf: surf, log: cfg.Logger},
		bar:    newToolbar(cfg.ToolbarOptions, exec),
		popups: newPopupController(cfg.Layout, cfg.Logger),
		links:  newLinkConverter(surf),
		files:  &attachments{extensions: cfg.Extensions, decimals: cfg.SizeDecimals},
		ctx:    ctx,
		cancel: cancel,
	}
	c.addPopups()
	c.SetContent(cfg.Value)
	return c
}

// Close cancels in-flight network calls and pending timers.
func (c *Controller) Close() {
	c.cancel()
	if c.blurTimer != nil {
		c.blurTimer.Stop()
		c.blurTimer = nil
	}
	c.files.stopPulse()
}

// Surface returns the document. Hosts render it and move the selection on
// pointer and arrow input.
func (c *Controller) Surface() *surface.Surface { return c.surf }

// Scheduler returns the scheduler running deferred callbacks.
func (c *Controller) Scheduler() Scheduler { return c.sched }

// Placeholder returns the configured placeholder text.
func (c *Controller) Placeholder() string { return c.cfg.Placeholder }

// Empty reports whether the surface holds neither text nor images.
func (c *Controller) Empty() bool {
	return c.surf.Text() == "" && !c.surf.HasImages()
}

// Content returns the HTML content with scripts removed, or the raw source
// while the raw view is on. It reports false for a surface without text or
// images.
func (c *Controller) Content() (string, bool) {
	c.pruneScripts()
	if c.Empty() {
		return "", false
	}
	if c.rawView {
		return c.surf.Text(), true
	}
	return c.surf.HTML(), true
}

// TextContent returns the text of the document.
func (c *Controller) TextContent() string { return c.surf.Text() }

// SetContent replaces the document. Links it contains are never converted.
func (c *Controller) SetContent(markup string) {
	if err := c.surf.SetHTML(markup); err != nil {
		c.log.Warn("Set content", "err", err)
		c.surf.SetText(markup)
	}
	c.sel.forget()
	c.links.markAll()
}

// ClearContent empties the document.
func (c *Controller) ClearContent() { c.SetContent("") }

func (c *Controller) pruneScripts() {
	var scripts []*html.Node
	surface.Walk(c.surf.Root(), func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Script {
			scripts = append(scripts, n)
			return true
		}
		return false
	})
	for _, n := range scripts {
		c.surf.Remove(n)
	}
}

// Toolbar returns the toolbar controls in order.
func (c *Controller) Toolbar() []ToolbarControl { return c.bar.snapshot() }

// Popups returns every popup.
func (c *Controller) Popups() []PopupState { return c.popups.states() }

// Popup returns the popup called id.
func (c *Controller) Popup(id string) (PopupState, bool) {
	p, err := c.popups.get(id)
	if err != nil {
		return PopupState{}, false
	}
	return p.state(), true
}

// Focus returns the focus owner.
func (c *Controller) Focus() FocusTarget { return c.focus }

// Expanded reports whether fullscreen is on.
func (c *Controller) Expanded() bool { return c.expanded }

// RawView reports whether the raw source view is on.
func (c *Controller) RawView() bool { return c.rawView }

// Files returns the attached files.
func (c *Controller) Files() []AttachedFile {
	return append([]AttachedFile(nil), c.files.files...)
}

// ClearFiles drops every attached file.
func (c *Controller) ClearFiles() { c.files.files = nil }

// RemoveFile drops one attached file.
func (c *Controller) RemoveFile(id uuid.UUID) bool { return c.files.remove(id) }

// MetaCards returns the link previews.
func (c *Controller) MetaCards() []MetaCard {
	return append([]MetaCard(nil), c.metaCards...)
}

// RemoveMetaCard drops one link preview.
func (c *Controller) RemoveMetaCard(id uuid.UUID) bool {
	for i, m := range c.metaCards {
		if m.ID == id {
			c.metaCards = append(c.metaCards[:i], c.metaCards[i+1:]...)
			return true
		}
	}
	return false
}

// Pulse returns the invalid-file highlight.
func (c *Controller) Pulse() Pulse { return c.files.pulse }

// DropZone returns the drop zone state.
func (c *Controller) DropZone() DropState { return c.files.drop }

// SetFocus moves input focus. Leaving the surface runs the blur handling and
// arms the change commit; entering it runs the focus handling.
func (c *Controller) SetFocus(t FocusTarget) {
	prev := c.focus
	if prev == t {
		return
	}
	c.focus = t
	switch {
	case prev == FocusSurface:
		c.surfaceBlurred()
	case t == FocusOutside:
		c.scheduleCommit()
	}
	if t == FocusSurface {
		c.surfaceFocused()
	}
}

func (c *Controller) focusSurface() { c.SetFocus(FocusSurface) }

func (c *Controller) surfaceFocused() {
	if c.blurTimer != nil {
		c.blurTimer.Stop()
		c.blurTimer = nil
	}
	c.surf.Focus()
	if !c.hasOrig {
		c.orig, c.hasOrig = c.surf.HTML(), true
	}
	c.sel.restore(nil)
	if !c.rawView {
		c.bar.reconcile()
	}
	if f := c.onNextFocus; f != nil {
		c.onNextFocus = nil
		f()
	}
}

func (c *Controller) surfaceBlurred() {
	c.surf.Blur()
	c.textBuffer = ""
	if !c.rawView {
		c.links.convert(false)
	}
	c.scheduleCommit()
}

func (c *Controller) scheduleCommit() {
	if c.blurTimer != nil {
		c.blurTimer.Stop()
	}
	c.blurTimer = c.sched.AfterFunc(c.cfg.BlurCommitDelay, c.commitIfIdle)
}

// commitIfIdle reports the content once focus has settled outside the
// widget.
func (c *Controller) commitIfIdle() {
	c.blurTimer = nil
	if c.expanded || c.sel.toolbarInteraction || c.focus != FocusOutside || c.popups.anyOpen() {
		return
	}
	if !c.hasOrig || c.surf.HTML() == c.orig {
		return
	}
	c.hasOrig = false
	c.notifyChange()
}

func (c *Controller) notifyChange() {
	if c.cfg.Change == nil {
		return
	}
	content, _ := c.Content()
	c.cfg.Change(content)
}

// PressToolbar starts a toolbar interaction: the selection is captured and
// focus moves to the toolbar.
func (c *Controller) PressToolbar() {
	c.sel.capture()
	c.sel.toolbarInteraction = true
	c.SetFocus(FocusToolbar)
}

// ReleaseToolbar ends a toolbar interaction.
func (c *Controller) ReleaseToolbar() {
	c.sel.toolbarInteraction = false
}

// Activate presses, clicks and releases the control id.
func (c *Controller) Activate(id string) error {
	c.PressToolbar()
	defer c.ReleaseToolbar()
	return c.ClickControl(id)
}

// ClickControl runs the control id.
func (c *Controller) ClickControl(id string) error {
	ctl := c.bar.find(id)
	if ctl == nil {
		return fmt.Errorf("%w: %q", ErrUnknownControl, id)
	}
	if c.rawView && ctl.Command != HTML {
		return nil
	}
	c.sel.capture()

	if ctl.Custom {
		ctl.handler(c)
		return nil
	}
	switch ctl.Command {
	case Bold, Italic, Underline, Strikethrough:
		c.toggle(ctl)
	case RemoveFormat:
		c.removeFormat()
	case Link, Image, Table, FontName, FontSize, FontFormat, ForeColor, HiliteColor:
		return c.popups.toggle(ctl.ID)
	case Attachment:
		c.pickFiles()
	case HTML:
		c.toggleRawView()
	case Fullscreen:
		c.toggleFullscreen()
	default:
		c.Execute(ctl.Command, "")
	}
	return nil
}

// toggle flips a formatting toggle. Turning one on only marks it; the focus
// reconciliation applies it at the restored caret.
func (c *Controller) toggle(ctl *ToolbarControl) {
	if ctl.Active {
		ctl.Active = false
		c.sel.restore(nil)
		c.focusSurface()
		if c.exec.state(ctl.Command) {
			c.exec.run(ctl.Command, "")
		}
		return
	}
	ctl.Active = true
	c.sel.restore(nil)
	if c.focus == FocusSurface {
		c.bar.reconcile()
		return
	}
	c.focusSurface()
}

// Execute focuses the surface and runs cmd. Lists on an empty surface are
// synthesized, list toggles are deferred, and indentation never leaves
// blockquotes behind.
func (c *Controller) Execute(cmd Command, value string) {
	c.focusSurface()
	switch cmd {
	case InsertOrderedList, InsertUnorderedList:
		if c.surf.Text() == "" {
			c.synthesizeList(cmd)
			return
		}
		c.sched.Post(func() { c.exec.run(cmd, value) })
	case Indent:
		before := blockquotes(c.surf.Root())
		c.exec.run(cmd, value)
		c.flattenBlockquotes(before)
	case RemoveFormat:
		c.removeFormat()
	default:
		c.exec.run(cmd, value)
	}
}

func (c *Controller) synthesizeList(cmd Command) {
	tag := "ul"
	if cmd == InsertOrderedList {
		tag = "ol"
	}
	list := surface.NewElement(tag)
	item := surface.NewElement("li")
	list.AppendChild(item)
	c.surf.Root().AppendChild(list)
	c.surf.Touch()
	if err := c.surf.SetSelection(surface.Caret(surface.Point{Node: item})); err != nil {
		c.log.Debug("Place caret in list", "err", err)
	}
}

func blockquotes(root *html.Node) map[*html.Node]bool {
	out := map[*html.Node]bool{}
	surface.Walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Blockquote {
			out[n] = true
		}
		return false
	})
	return out
}

// flattenBlockquotes turns blockquotes created since before into plain
// indented divs.
func (c *Controller) flattenBlockquotes(before map[*html.Node]bool) {
	for bq := range blockquotes(c.surf.Root()) {
		if before[bq] {
			continue
		}
		c.surf.Rename(bq, "div")
		c.surf.SetAttr(bq, "style", fmt.Sprintf("margin-left: %dpx;", surface.IndentStep))
	}
}

// formatContext classifies the structure around the selection for
// removeFormat.
type formatContext uint8

const (
	contextPlain formatContext = iota
	contextList
	contextHeading
)

func (c *Controller) classify(r surface.Range) (formatContext, *html.Node) {
	common := commonAncestor(r.Start.Node, r.End.Node)
	container := surface.Closest(common, nil, func(n *html.Node) bool { return n.Type == html.ElementNode })
	if container != nil && (container.DataAtom == atom.Ul || container.DataAtom == atom.Ol) {
		return contextList, container
	}
	heading := surface.Closest(common, c.surf.Root(), func(n *html.Node) bool {
		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			return n.Type == html.ElementNode
		}
		return false
	})
	if heading != nil {
		return contextHeading, heading
	}
	return contextPlain, nil
}

func commonAncestor(a, b *html.Node) *html.Node {
	seen := map[*html.Node]bool{}
	for n := a; n != nil; n = n.Parent {
		seen[n] = true
	}
	for n := b; n != nil; n = n.Parent {
		if seen[n] {
			return n
		}
	}
	return nil
}

// removeFormat flattens the structure around the selection and clears every
// toggle.
func (c *Controller) removeFormat() {
	c.focusSurface()
	defer c.bar.clearToggles()

	r, ok := c.surf.Selection()
	if !ok {
		return
	}
	switch kind, n := c.classify(r); kind {
	case contextList:
		c.selectText(c.surf.ReplaceChildrenWithText(n))
	case contextHeading:
		c.selectText(c.surf.ReplaceWithText(n))
	default:
		c.exec.run(RemoveFormat, "")
		text := c.surf.SelectedText()
		if text == "" {
			return
		}
		if err := c.surf.InsertText(text); err != nil {
			c.log.Debug("Reinsert plain text", "err", err)
			return
		}
		c.selectInsertedText(text)
	}
}

func (c *Controller) selectText(t *html.Node) {
	r := surface.Range{Start: surface.Point{Node: t}, End: surface.Point{Node: t, Offset: grapheme.Count(t.Data)}}
	if err := c.surf.SetSelection(r); err != nil {
		c.log.Debug("Select text", "err", err)
	}
}

// selectInsertedText selects text just inserted before the caret.
func (c *Controller) selectInsertedText(text string) {
	r, ok := c.surf.Selection()
	if !ok || r.End.Node.Type != html.TextNode {
		return
	}
	end := r.End
	start := surface.Point{Node: end.Node, Offset: end.Offset - grapheme.Count(text)}
	if start.Offset < 0 {
		return
	}
	_ = c.surf.SetSelection(surface.Range{Start: start, End: end})
}

func (c *Controller) toggleRawView() {
	if c.rawView {
		c.rawView = false
		c.SetContent(c.surf.Text())
		c.focusSurface()
		return
	}
	c.popups.closeAll()
	c.bar.clearToggles()
	c.rawView = true
	c.surf.SetText(c.surf.HTML())
}

func (c *Controller) toggleFullscreen() {
	if c.expanded {
		c.expanded = false
		if c.expandSnapshot != c.surf.HTML() {
			c.notifyChange()
		}
		return
	}
	c.expandSnapshot = c.surf.HTML()
	c.expanded = true
}

func (c *Controller) pickFiles() {
	if c.cfg.PickFiles == nil {
		c.log.Debug("No file picker configured")
		return
	}
	c.cfg.PickFiles(c.AttachFiles)
}

// AttachFiles attaches every file that passes the allow-list.
func (c *Controller) AttachFiles(files []File) {
	for _, f := range files {
		c.Attach(f)
	}
}

// Attach validates f and attaches it. A rejected file pulses the widget.
func (c *Controller) Attach(f File) (AttachedFile, bool) {
	if !c.files.validate(f.Name) {
		c.log.Info("Reject attachment", "name", f.Name)
		if c.cfg.OnInvalidFile != nil {
			c.cfg.OnInvalidFile()
		}
		c.files.startPulse(c.sched)
		return AttachedFile{}, false
	}
	af := c.files.add(f)
	if c.cfg.OnValidFile != nil {
		c.cfg.OnValidFile()
	}
	return af, true
}

// DragEnter shows the drop zone when files are dragged over the surface.
func (c *Controller) DragEnter(hasFiles bool) {
	if c.cfg.FileUpload && hasFiles && c.files.drop == DropNone {
		c.files.drop = DropShown
	}
}

// DragOver enables a shown drop zone.
func (c *Controller) DragOver() {
	if c.files.drop == DropShown {
		c.files.drop = DropEnabled
	}
}

// DragLeave removes an enabled drop zone.
func (c *Controller) DragLeave() {
	if c.files.drop == DropEnabled {
		c.files.drop = DropNone
	}
}

// Drop removes the drop zone and attaches the dropped files.
func (c *Controller) Drop(files []File) {
	c.files.drop = DropNone
	if !c.cfg.FileUpload {
		return
	}
	c.AttachFiles(files)
}

// async runs work off the controller goroutine and posts the callback it
// returns back through the scheduler.
func (c *Controller) async(work func(ctx context.Context) func()) {
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		done := work(c.ctx)
		if done == nil || c.ctx.Err() != nil {
			return
		}
		c.sched.Post(done)
	}()
}

// lookupMeta requests the preview of url and adds a card when it is
// complete.
func (c *Controller) lookupMeta(url string) {
	meta := c.cfg.Metadata
	if meta == nil {
		return
	}
	c.async(func(ctx context.Context) func() {
		m, err := meta.FetchMeta(ctx, url)
		return func() {
			if err != nil {
				c.log.Warn("Fetch metadata", "url", url, "err", err)
				return
			}
			if !m.Complete() {
				return
			}
			c.metaCards = append(c.metaCards, MetaCard{
				ID:          uuid.Must(uuid.NewV4()),
				URL:         m.URL,
				ImageURL:    m.Image,
				Title:       m.Title,
				Description: m.Description,
			})
		}
	})
}
