package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// PopupPhase is the lifecycle state of a popup.
type PopupPhase uint8

const (
	PopupClosed PopupPhase = iota
	PopupOpening
	PopupOpen
)

func (p PopupPhase) String() string {
	switch p {
	case PopupOpening:
		return "opening"
	case PopupOpen:
		return "open"
	default:
		return "closed"
	}
}

// Field is an input of a popup.
type Field struct {
	Name    string
	Label   string
	Value   string
	Default string
	// Required fields must be non-empty for the primary action to run.
	Required bool
	// Numeric fields must hold a positive integer when non-empty.
	Numeric bool
	// Checkbox fields hold "true" or "false".
	Checkbox bool
	// Invalid is set after a submit rejected the field.
	Invalid bool
}

// Checked reports whether a checkbox field is on.
func (f Field) Checked() bool {
	v, _ := strconv.ParseBool(f.Value)
	return v
}

// Choice is a predefined value offered by a popup.
type Choice struct {
	Label string
	Value string
}

// PopupState is a snapshot of a popup.
type PopupState struct {
	ID     string
	Anchor string
	Group  string
	Phase  PopupPhase
	// Offset is the horizontal offset from the left edge of the surface.
	Offset  int
	Fields  []Field
	Choices []Choice
}

// Open reports whether the popup is open.
func (p PopupState) Open() bool { return p.Phase == PopupOpen }

// Field returns the field called name.
func (p PopupState) Field(name string) (Field, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Layout reports widget geometry in host units (cells or pixels).
type Layout interface {
	// ControlOffset is the left offset of a toolbar control.
	ControlOffset(id string) int
	// PopupWidth is the rendered width of a popup.
	PopupWidth(id string) int
	// SurfaceWidth is the width of the editing surface.
	SurfaceWidth() int
}

const toolbarGroup = "toolbar"

// popupSpec describes one popup: its fields and primary action.
type popupSpec struct {
	id      string
	anchor  string
	group   string
	fields  []Field
	choices []Choice
	// prepare adjusts the fields of a popup being opened.
	prepare func(p *popup)
	// submit runs the primary action; returning ErrRequiredField keeps the
	// popup open.
	submit func(p *popup) error
}

type popup struct {
	spec   popupSpec
	phase  PopupPhase
	offset int
	fields []Field
}

func (p *popup) value(name string) string {
	for _, f := range p.fields {
		if f.Name == name {
			return strings.TrimSpace(f.Value)
		}
	}
	return ""
}

func (p *popup) checked(name string) bool {
	for _, f := range p.fields {
		if f.Name == name {
			return f.Checked()
		}
	}
	return false
}

// invalidate marks name invalid.
func (p *popup) invalidate(name string) {
	for i := range p.fields {
		if p.fields[i].Name == name {
			p.fields[i].Invalid = true
		}
	}
}

func (p *popup) state() PopupState {
	return PopupState{
		ID:      p.spec.id,
		Anchor:  p.spec.anchor,
		Group:   p.spec.group,
		Phase:   p.phase,
		Offset:  p.offset,
		Fields:  append([]Field(nil), p.fields...),
		Choices: p.spec.choices,
	}
}

type keyListener func(KeyEvent) bool

// popupController keeps at most one popup per group open. Key listeners of
// a popup exist only while it is open; the global Escape and outside-click
// listeners exist only while any popup is open.
type popupController struct {
	popups []*popup
	layout Layout
	log    *slog.Logger

	scoped  map[string][]keyListener
	global  keyListener
	outside func()
}

func newPopupController(layout Layout, log *slog.Logger) *popupController {
	return &popupController{layout: layout, log: log, scoped: map[string][]keyListener{}}
}

func (pc *popupController) add(spec popupSpec) {
	if spec.group == "" {
		spec.group = toolbarGroup
	}
	if spec.anchor == "" {
		spec.anchor = spec.id
	}
	pc.popups = append(pc.popups, &popup{spec: spec, fields: resetFields(spec.fields)})
}

func resetFields(fields []Field) []Field {
	out := append([]Field(nil), fields...)
	for i := range out {
		out[i].Value = out[i].Default
		out[i].Invalid = false
	}
	return out
}

func (pc *popupController) get(id string) (*popup, error) {
	for _, p := range pc.popups {
		if p.spec.id == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPopup, id)
}

func (pc *popupController) has(id string) bool {
	_, err := pc.get(id)
	return err == nil
}

func (pc *popupController) isOpen(id string) bool {
	p, err := pc.get(id)
	return err == nil && p.phase == PopupOpen
}

func (pc *popupController) anyOpen() bool {
	for _, p := range pc.popups {
		if p.phase != PopupClosed {
			return true
		}
	}
	return false
}

func (pc *popupController) states() []PopupState {
	out := make([]PopupState, len(pc.popups))
	for i, p := range pc.popups {
		out[i] = p.state()
	}
	return out
}

// toggle closes an open popup and opens a closed one.
func (pc *popupController) toggle(id string) error {
	if pc.isOpen(id) {
		return pc.close(id)
	}
	return pc.open(id)
}

// open closes the other popups of the group, positions the popup under its
// anchor and installs its listeners.
func (pc *popupController) open(id string) error {
	p, err := pc.get(id)
	if err != nil {
		return err
	}
	for _, o := range pc.popups {
		if o != p && o.spec.group == p.spec.group && o.phase != PopupClosed {
			pc.closePopup(o)
		}
	}

	p.phase = PopupOpening
	p.fields = resetFields(p.spec.fields)
	if p.spec.prepare != nil {
		p.spec.prepare(p)
	}
	p.offset = pc.offsetFor(p)
	p.phase = PopupOpen

	pc.scoped[id] = []keyListener{
		func(ev KeyEvent) bool {
			if ev.Key != KeyEscape {
				return false
			}
			pc.closePopup(p)
			return true
		},
		func(ev KeyEvent) bool {
			if ev.Key != KeyEnter {
				return false
			}
			if err := pc.submit(id); err != nil {
				pc.log.Debug("Submit popup", "popup", id, "err", err)
			}
			return true
		},
	}
	pc.installGlobal()
	return nil
}

// offsetFor aligns the popup with its anchor, shifted left so it never
// extends past the right edge of the surface.
func (pc *popupController) offsetFor(p *popup) int {
	if pc.layout == nil {
		return 0
	}
	off := pc.layout.ControlOffset(p.spec.anchor)
	width := pc.layout.PopupWidth(p.spec.id)
	if right := off + width; right > pc.layout.SurfaceWidth() {
		off += pc.layout.SurfaceWidth() - right
	}
	return max(off, 0)
}

func (pc *popupController) close(id string) error {
	p, err := pc.get(id)
	if err != nil {
		return err
	}
	pc.closePopup(p)
	return nil
}

func (pc *popupController) closeAll() {
	for _, p := range pc.popups {
		if p.phase != PopupClosed {
			pc.closePopup(p)
		}
	}
}

func (pc *popupController) closePopup(p *popup) {
	delete(pc.scoped, p.spec.id)
	p.phase = PopupClosed
	if !pc.anyOpen() {
		pc.global, pc.outside = nil, nil
	}
}

func (pc *popupController) installGlobal() {
	if pc.global != nil {
		return
	}
	pc.global = func(ev KeyEvent) bool {
		if ev.Key != KeyEscape {
			return false
		}
		pc.closeAll()
		return true
	}
	pc.outside = pc.closeAll
}

// keyDown dispatches a key pressed inside popup id to its listeners.
func (pc *popupController) keyDown(id string, ev KeyEvent) bool {
	for _, l := range pc.scoped[id] {
		if l(ev) {
			return true
		}
	}
	return false
}

// globalKey dispatches a key released anywhere.
func (pc *popupController) globalKey(ev KeyEvent) bool {
	if pc.global == nil {
		return false
	}
	return pc.global(ev)
}

func (pc *popupController) clickOutside() {
	if pc.outside != nil {
		pc.outside()
	}
}

func (pc *popupController) setField(id, name, value string) error {
	p, err := pc.get(id)
	if err != nil {
		return err
	}
	for i := range p.fields {
		if p.fields[i].Name == name {
			p.fields[i].Value = value
			p.fields[i].Invalid = false
			return nil
		}
	}
	return fmt.Errorf("%w: %s.%s", ErrUnknownField, id, name)
}

// submit validates the fields and runs the primary action. The popup closes
// unless a field is invalid.
func (pc *popupController) submit(id string) error {
	p, err := pc.get(id)
	if err != nil {
		return err
	}
	if p.phase != PopupOpen {
		return fmt.Errorf("%w: %q", ErrPopupClosed, id)
	}
	invalid := false
	for i := range p.fields {
		f := &p.fields[i]
		v := strings.TrimSpace(f.Value)
		f.Invalid = (f.Required && v == "") || (f.Numeric && v != "" && !positive(v))
		invalid = invalid || f.Invalid
	}
	if invalid {
		return ErrRequiredField
	}
	if p.spec.submit != nil {
		if err := p.spec.submit(p); err != nil {
			if errors.Is(err, ErrRequiredField) {
				return err
			}
			pc.log.Warn("Popup action", "popup", id, "err", err)
		}
	}
	pc.closePopup(p)
	return nil
}

// choose puts a predefined value into the first field and submits.
func (pc *popupController) choose(id string, i int) error {
	p, err := pc.get(id)
	if err != nil {
		return err
	}
	if i < 0 || i >= len(p.spec.choices) || len(p.fields) == 0 {
		return fmt.Errorf("%w: %s choice %d", ErrUnknownField, id, i)
	}
	p.fields[0].Value = p.spec.choices[i].Value
	p.fields[0].Invalid = false
	return pc.submit(id)
}

func positive(v string) bool {
	n, err := strconv.Atoi(v)
	return err == nil && n > 0
}
