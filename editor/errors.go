package editor

import "errors"

var (
	// ErrUnknownControl is returned for a toolbar id the controller does not
	// carry.
	ErrUnknownControl = errors.New("editor: unknown toolbar control")
	// ErrUnknownPopup is returned for a popup id the controller does not
	// carry.
	ErrUnknownPopup = errors.New("editor: unknown popup")
	// ErrUnknownField is returned when setting a field a popup does not have.
	ErrUnknownField = errors.New("editor: unknown popup field")
	// ErrRequiredField is returned by a popup submit with an empty or invalid
	// required field. The field is marked invalid and the popup stays open.
	ErrRequiredField = errors.New("editor: required popup field is empty or invalid")
	// ErrPopupClosed is returned when acting on a popup that is not open.
	ErrPopupClosed = errors.New("editor: popup is not open")
	// ErrNotImage is returned when a pasted image is empty, or has no MIME
	// type and does not decode.
	ErrNotImage = errors.New("editor: payload is not an image")
)
