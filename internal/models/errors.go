package models

import "errors"

// Sentinel errors shared across services and handlers. Callers match with
// errors.Is; nothing in the codebase inspects error text.
var (
	// ErrNotFound signals a missing user or dump record.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated signals a missing, malformed, or unresolvable
	// credential.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrSessionExpired signals a structurally valid but expired token.
	// Kept distinct from ErrUnauthenticated so handlers can ask the
	// client to re-authenticate instead of denying outright.
	ErrSessionExpired = errors.New("session expired")

	// ErrForbidden signals an authenticated caller acting on a record
	// they do not own.
	ErrForbidden = errors.New("forbidden")

	// ErrAllocationExhausted signals that the public ID allocator hit
	// its retry ceiling.
	ErrAllocationExhausted = errors.New("public id allocation exhausted")
)
