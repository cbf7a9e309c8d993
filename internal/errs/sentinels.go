// Package errs contains sentinel and typed errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across api/session/contacts layers.
var (
	// ErrUnauthorized indicates a 401/403 response; the only error kind that
	// triggers the silent-refresh protocol.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSessionExpired indicates the refresh itself failed; the local session
	// has been forced to unauthenticated.
	ErrSessionExpired = errors.New("session expired, please log in again")

	// ErrNetwork indicates the request could not complete (DNS, connect, timeout).
	ErrNetwork = errors.New("network error")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")
)
