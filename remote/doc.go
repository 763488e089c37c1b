// Package remote talks to the HTTP endpoints of the editor: link metadata
// lookup and pasted image upload.
//
// Both endpoints take and return JSON. Requests retry transient failures
// through go-retryablehttp.
package remote
