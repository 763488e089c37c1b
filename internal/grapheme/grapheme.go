// Package grapheme converts between grapheme-cluster offsets, which the
// surface uses for caret positions inside text nodes, and byte offsets.
package grapheme

import (
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Split returns grapheme clusters for text in visual order.
func Split(text string) []string {
	if text == "" {
		return nil
	}
	g := uniseg.NewGraphemes(text)
	out := make([]string, 0, len(text))
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// Count returns the number of grapheme clusters in text.
func Count(text string) int {
	if text == "" {
		return 0
	}
	return uniseg.GraphemeClusterCount(text)
}

// ByteOffset returns the byte offset of the n-th cluster boundary.
// n is clamped to [0, Count(text)].
func ByteOffset(text string, n int) int {
	if n <= 0 || text == "" {
		return 0
	}
	g := uniseg.NewGraphemes(text)
	idx := 0
	for g.Next() {
		if idx == n {
			from, _ := g.Positions()
			return from
		}
		idx++
	}
	return len(text)
}

// SplitAt splits text before the n-th cluster.
func SplitAt(text string, n int) (string, string) {
	off := ByteOffset(text, n)
	return text[:off], text[off:]
}

// Slice returns the grapheme-safe substring for [start, end).
func Slice(text string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end < start {
		return ""
	}
	return text[ByteOffset(text, start):ByteOffset(text, end)]
}

// Width returns the terminal cell width of a cluster.
func Width(cluster string) int {
	return runewidth.StringWidth(cluster)
}

// IsSpace reports whether all runes in cluster are Unicode whitespace.
func IsSpace(cluster string) bool {
	if cluster == "" {
		return false
	}
	for _, r := range cluster {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
