package domain

import "errors"

// Error kinds surfaced by the query engine. Callers match with errors.Is;
// call sites wrap these with fmt.Errorf("...: %w", ...) to add context.
var (
	// ErrNotFound reports an unknown entity reference or UID.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidCursor reports a pagination token that failed decoding or
	// integrity verification, or carries an unsupported version.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrInvalidFilter reports a malformed filter tree.
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrInvalidRequest reports invalid request parameters, such as a
	// non-positive limit or conflicting pagination fields.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnauthorized is surfaced unchanged from the authorization
	// collaborator. The engine never produces or interprets it.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrStorageUnavailable reports a storage collaborator failure. The
	// engine does not retry; retry policy belongs to the caller.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
