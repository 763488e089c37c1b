package remote

import "errors"

var (
	// ErrNoEndpoint is returned when the endpoint for a call is not
	// configured.
	ErrNoEndpoint = errors.New("remote: endpoint not configured")
	// ErrStatus is returned for a non-2xx response.
	ErrStatus = errors.New("remote: unexpected status")
	// ErrIncompleteMeta is returned when a metadata response lacks the url,
	// title or image.
	ErrIncompleteMeta = errors.New("remote: incomplete metadata")
	// ErrEmptyRef is returned when an upload response carries no reference.
	ErrEmptyRef = errors.New("remote: empty image reference")
)
