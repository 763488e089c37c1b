package editor

import (
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

// AttachedFile is a file accepted by the attachment allow-list.
type AttachedFile struct {
	ID     uuid.UUID
	Name   string
	Size   int64
	Handle io.Reader

	decimals int
}

// SizeLabel is the human readable size shown next to the file.
func (f AttachedFile) SizeLabel() string { return FormatBytes(f.Size, f.decimals) }

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// FormatBytes renders n bytes in base-1024 units with at most decimals
// fraction digits; trailing zeros are dropped.
func FormatBytes(n int64, decimals int) string {
	if n == 0 {
		return "0 Bytes"
	}
	decimals = max(decimals, 0)
	v := float64(n)
	i := 0
	for (v >= 1024 || v <= -1024) && i < len(byteUnits)-1 {
		v /= 1024
		i++
	}
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + byteUnits[i]
}

// Pulse is the transient background of the widget after a rejected file.
type Pulse struct {
	Background string
	Transition string
}

// Active reports whether the pulse paints anything.
func (p Pulse) Active() bool { return p != Pulse{} }

const (
	pulseColor = "#e3bdbd"
	pulseFade  = "background-color .5s"
	pulseStep  = 500 * time.Millisecond
)

// DropState is the state of the drop zone shown while files are dragged over
// the surface.
type DropState uint8

const (
	DropNone DropState = iota
	// DropShown is a zone shown on drag-enter.
	DropShown
	// DropEnabled is a zone the pointer moved over.
	DropEnabled
)

// attachments validates and keeps attached files.
type attachments struct {
	extensions []string
	decimals   int
	files      []AttachedFile
	pulse      Pulse
	pulseTimer Timer
	drop       DropState
}

// validate reports whether the lowercased extension after the last dot is
// allowed. Names without a dot are rejected.
func (a *attachments) validate(name string) bool {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return false
	}
	ext := "." + strings.ToLower(name[i+1:])
	return slices.ContainsFunc(a.extensions, func(e string) bool {
		return strings.ToLower(e) == ext
	})
}

func (a *attachments) add(f File) AttachedFile {
	af := AttachedFile{ID: uuid.Must(uuid.NewV4()), Name: f.Name, Size: f.Size, Handle: f.Handle, decimals: a.decimals}
	a.files = append(a.files, af)
	return af
}

func (a *attachments) remove(id uuid.UUID) bool {
	i := slices.IndexFunc(a.files, func(f AttachedFile) bool { return f.ID == id })
	if i < 0 {
		return false
	}
	a.files = slices.Delete(a.files, i, i+1)
	return true
}

// startPulse paints the highlight, fades it back after one step and drops
// the transition after another.
func (a *attachments) startPulse(s Scheduler) {
	if a.pulseTimer != nil {
		a.pulseTimer.Stop()
	}
	a.pulse = Pulse{Background: pulseColor, Transition: pulseFade}
	a.pulseTimer = s.AfterFunc(pulseStep, func() {
		a.pulse.Background = "inherit"
		a.pulseTimer = s.AfterFunc(pulseStep, func() {
			a.pulse = Pulse{}
			a.pulseTimer = nil
		})
	})
}

func (a *attachments) stopPulse() {
	if a.pulseTimer != nil {
		a.pulseTimer.Stop()
		a.pulseTimer = nil
	}
	a.pulse = Pulse{}
}
