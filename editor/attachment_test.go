package editor

import (
	"strings"
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		n        int64
		decimals int
		want     string
	}{
		{0, 2, "0 Bytes"},
		{1, 2, "1 Bytes"},
		{1023, 2, "1023 Bytes"},
		{1024, 2, "1 KB"},
		{1536, 2, "1.5 KB"},
		{1048576, 2, "1 MB"},
		{1234567, 2, "1.18 MB"},
		{1234567, 0, "1 MB"},
		{1 << 30, 2, "1 GB"},
	}
	for _, tc := range cases {
		if got := FormatBytes(tc.n, tc.decimals); got != tc.want {
			t.Fatalf("FormatBytes(%d, %d): got %q, want %q", tc.n, tc.decimals, got, tc.want)
		}
	}
}

func TestValidateExtension(t *testing.T) {
	a := &attachments{extensions: []string{".pdf", ".PNG", ".zip"}}
	cases := []struct {
		name string
		want bool
	}{
		{"report.pdf", true},
		{"REPORT.PDF", true},
		{"shot.png", true},
		{"archive.tar.zip", true},
		{"setup.exe", false},
		{"README", false},
		{"pdf", false},
		{"trailing.", false},
	}
	for _, tc := range cases {
		if got := a.validate(tc.name); got != tc.want {
			t.Fatalf("validate(%q): got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAttach_ValidAndInvalid(t *testing.T) {
	valid, invalid := 0, 0
	c, sched := newTestController(t, Config{
		OnValidFile:   func() { valid++ },
		OnInvalidFile: func() { invalid++ },
	})

	af, ok := c.Attach(File{Name: "notes.txt", Size: 2048, Handle: strings.NewReader("x")})
	if !ok {
		t.Fatalf("attach notes.txt: rejected")
	}
	if af.SizeLabel() != "2 KB" {
		t.Fatalf("size label: got %q, want %q", af.SizeLabel(), "2 KB")
	}
	if _, ok := c.Attach(File{Name: "virus.exe"}); ok {
		t.Fatalf("attach virus.exe: accepted")
	}
	if valid != 1 || invalid != 1 {
		t.Fatalf("callbacks: got valid=%d invalid=%d, want 1 and 1", valid, invalid)
	}
	if got := c.Files(); len(got) != 1 || got[0].Name != "notes.txt" {
		t.Fatalf("files: got %+v", got)
	}

	if p := c.Pulse(); p.Background != pulseColor || p.Transition != pulseFade {
		t.Fatalf("pulse: got %+v", p)
	}
	sched.Advance(500 * time.Millisecond)
	if p := c.Pulse(); p.Background != "inherit" || p.Transition != pulseFade {
		t.Fatalf("pulse after fade: got %+v", p)
	}
	sched.Advance(500 * time.Millisecond)
	if c.Pulse().Active() {
		t.Fatalf("pulse after reset: got %+v, want none", c.Pulse())
	}

	if !c.RemoveFile(af.ID) {
		t.Fatalf("remove: got false")
	}
	if len(c.Files()) != 0 {
		t.Fatalf("files after remove: got %d", len(c.Files()))
	}
}

func TestDropZone(t *testing.T) {
	c, _ := newTestController(t, Config{FileUpload: true})

	c.DragEnter(false)
	if c.DropZone() != DropNone {
		t.Fatalf("drag without files: got %v", c.DropZone())
	}
	c.DragEnter(true)
	if c.DropZone() != DropShown {
		t.Fatalf("drag enter: got %v, want shown", c.DropZone())
	}
	c.DragOver()
	if c.DropZone() != DropEnabled {
		t.Fatalf("drag over: got %v, want enabled", c.DropZone())
	}
	c.Drop([]File{{Name: "a.pdf"}, {Name: "b.bin"}})
	if c.DropZone() != DropNone {
		t.Fatalf("drop: got %v, want none", c.DropZone())
	}
	if got := len(c.Files()); got != 1 {
		t.Fatalf("dropped files: got %d, want 1", got)
	}

	c.DragEnter(true)
	c.DragOver()
	c.DragLeave()
	if c.DropZone() != DropNone {
		t.Fatalf("drag leave: got %v, want none", c.DropZone())
	}
}

func TestDropZone_DisabledWithoutFileUpload(t *testing.T) {
	c, _ := newTestController(t, Config{})
	c.DragEnter(true)
	if c.DropZone() != DropNone {
		t.Fatalf("drop zone: got %v, want none", c.DropZone())
	}
	c.Drop([]File{{Name: "a.pdf"}})
	if len(c.Files()) != 0 {
		t.Fatalf("files: got %d, want 0", len(c.Files()))
	}
}

func TestAttach_SizeDecimals(t *testing.T) {
	cases := []struct {
		decimals int
		want     string
	}{
		{0, "1.21 KB"},
		{1, "1.2 KB"},
		{3, "1.206 KB"},
		{-1, "1 KB"},
	}
	for _, tc := range cases {
		c, _ := newTestController(t, Config{SizeDecimals: tc.decimals})
		af, ok := c.Attach(File{Name: "a.txt", Size: 1235})
		if !ok {
			t.Fatalf("decimals %d: a.txt rejected", tc.decimals)
		}
		if got := af.SizeLabel(); got != tc.want {
			t.Fatalf("decimals %d: got %q, want %q", tc.decimals, got, tc.want)
		}
		if got := c.Files()[0].SizeLabel(); got != tc.want {
			t.Fatalf("decimals %d, listed: got %q, want %q", tc.decimals, got, tc.want)
		}
	}
}
