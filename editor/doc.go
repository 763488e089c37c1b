// Package editor is the headless editing-state controller of a rich-text
// widget.
//
// A Controller owns a surface.Surface and keeps toolbar state, selection,
// popups, attachments and content consistent while the host feeds it focus,
// key, click, paste and drag events. Deferred work (blur commits, font
// application, paste post-processing, network completions) goes through a
// Scheduler and always runs on the goroutine that drives the controller.
//
// The package does not render anything. Hosts read Toolbar, Popups, Files,
// MetaCards, Pulse and DropZone to draw the widget; see the tui package for a
// terminal host.
package editor
