package editor

import (
	"testing"

	"github.com/iw2rmb/plume/surface"
)

func TestValidURL(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"http://x.com", true},
		{"https://a.b.c/path?q=1#top", true},
		{"x.com", false},
		{"ftp://x.com", false},
		{"http://localhost", false},
		{"http://x.com and more", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidURL(tc.in); got != tc.want {
			t.Fatalf("ValidURL(%q): got %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestHrefFor(t *testing.T) {
	cases := map[string]string{
		"https://x.com/a": "https://x.com/a",
		"x.com":           "http://x.com",
		"me@x.com":        "mailto:me@x.com",
		"mailto:me@x.com": "mailto:me@x.com",
		"x.com/@someone":  "http://x.com/@someone",
	}
	for in, want := range cases {
		if got := hrefFor(in); got != want {
			t.Fatalf("hrefFor(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestConvert_OnBlur(t *testing.T) {
	c, _ := newTestController(t, Config{Value: "<p>write me@x.com or x.com</p>"})
	c.SetFocus(FocusSurface)
	c.SetFocus(FocusOutside)

	want := `<p>write me@x.com or <a href="http://x.com" target="_blank">x.com</a></p>`
	if got := c.Surface().HTML(); got != want {
		t.Fatalf("html: got %q, want %q", got, want)
	}
}

func TestConvert_MailtoUnwrapped(t *testing.T) {
	c, _ := newTestController(t, Config{Value: "<p>contact a@b.com or visit http://x.com</p>"})
	c.SetFocus(FocusSurface)
	c.SetFocus(FocusOutside)

	want := `<p>contact a@b.com or visit <a href="http://x.com" target="_blank">http://x.com</a></p>`
	if got := c.Surface().HTML(); got != want {
		t.Fatalf("html: got %q, want %q", got, want)
	}
	if n := len(elements(c, "a")); n != 1 {
		t.Fatalf("anchors: got %d, want 1", n)
	}
}

func TestConvert_ExistingLinksUntouched(t *testing.T) {
	in := `<p><a href="mailto:me@x.com">mail</a> <a href="/rel">rel</a></p>`
	c, _ := newTestController(t, Config{Value: in})
	c.SetFocus(FocusSurface)
	c.SetFocus(FocusOutside)
	if got := c.Surface().HTML(); got != in {
		t.Fatalf("html: got %q, want %q", got, in)
	}
}

func TestConvert_SkipsCode(t *testing.T) {
	in := "<pre>see http://x.com</pre><p><code>x.com</code></p>"
	c, _ := newTestController(t, Config{Value: in})
	c.SetFocus(FocusSurface)
	c.SetFocus(FocusOutside)
	if got := c.Surface().HTML(); got != in {
		t.Fatalf("html: got %q, want %q", got, in)
	}
}

func TestConvert_WhileTyping(t *testing.T) {
	c, _ := newTestController(t, Config{})
	c.SetFocus(FocusSurface)
	typeText(c, "http://a.com")

	if n := len(elements(c, "a")); n != 0 {
		t.Fatalf("anchors before space: got %d, want 0", n)
	}
	c.Key(KeyEvent{Key: KeySpace})

	as := elements(c, "a")
	if len(as) != 1 {
		t.Fatalf("anchors after space: got %d, want 1 in %q", len(as), c.Surface().HTML())
	}
	if href, _ := surface.Attr(as[0], "href"); href != "http://a.com" {
		t.Fatalf("href: got %q, want %q", href, "http://a.com")
	}
	if target, _ := surface.Attr(as[0], "target"); target != "_blank" {
		t.Fatalf("target: got %q, want _blank", target)
	}
	if got := surface.TextContent(as[0]); got != "http://a.com" {
		t.Fatalf("anchor text: got %q", got)
	}
	if got, want := c.Surface().Text(), "http://a.com "; got != want {
		t.Fatalf("text: got %q, want %q", got, want)
	}
}

func TestConvert_NotAURLStaysText(t *testing.T) {
	c, _ := newTestController(t, Config{})
	c.SetFocus(FocusSurface)
	typeText(c, "hello")
	c.Key(KeyEvent{Key: KeyEnter})
	if n := len(elements(c, "a")); n != 0 {
		t.Fatalf("anchors: got %d, want 0", n)
	}
}
