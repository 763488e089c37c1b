package surface

import "errors"

var (
	// ErrUnsupported is returned by Exec for commands the surface has no
	// primitive for.
	ErrUnsupported = errors.New("surface: unsupported command")
	// ErrNoSelection is returned when an operation needs a selection and none
	// is installed.
	ErrNoSelection = errors.New("surface: no selection")
	// ErrDetached is returned when a range anchor is no longer part of the
	// document.
	ErrDetached = errors.New("surface: range anchor is detached")
	// ErrInvalidValue is returned for command arguments the primitive rejects.
	ErrInvalidValue = errors.New("surface: invalid command value")
)
