// Package upstream holds HTTP clients for the directory's external
// collaborators: the ingest-key matching service, the authentication
// service, and the CDN region-matching service.
//
// Collaborator failures are surfaced immediately as ErrUnavailable; the
// directory never retries on the caller's behalf.
package upstream

import (
	"errors"
	"net/http"
	"time"
)

var (
	// ErrUnavailable wraps any collaborator failure: unreachable host,
	// timeout, or a non-success status.
	ErrUnavailable = errors.New("upstream unavailable")

	// ErrKeyRejected is returned when the key-match collaborator refuses an
	// ingest key.
	ErrKeyRejected = errors.New("ingest key rejected")

	// ErrUnauthorized is returned when the authentication collaborator
	// rejects the acting user.
	ErrUnauthorized = errors.New("unauthorized")
)

// newHTTPClient builds the client shared by the collaborator wrappers.
// The timeout is the request-level deadline required for every upstream call.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
