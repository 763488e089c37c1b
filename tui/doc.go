// Package tui hosts an editor.Controller inside a Bubble Tea program.
//
// The package is responsible for translating terminal input into controller
// events, draining the controller's scheduler on the Bubble Tea goroutine, and
// rendering the toolbar, the document, popups, and the attachment panel.
package tui
