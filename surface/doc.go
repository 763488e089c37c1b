// Package surface is the editable document: an HTML body tree with a caret
// and selection model and the formatting primitives an editing host offers.
//
// Offsets inside text nodes count grapheme clusters; offsets inside elements
// count children. Formatting commands come in two dialects: Markup writes
// semantic tags (<b>, <font color>), Styled writes CSS spans.
//
// The surface knows nothing about toolbars or popups. It reports state through
// QueryState and QueryValue and reports failures through sentinel errors.
package surface
