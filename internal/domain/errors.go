package domain

import "errors"

// Error taxonomy shared by services and handlers. Services wrap these
// with context via fmt.Errorf("...: %w", Err...); handlers map them to
// HTTP statuses in one place.
var (
	// ErrPermissionDenied means a role or ownership guard failed.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound means the referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation means the input was malformed or violates a
	// business rule (bad CSV row, illegal status transition).
	ErrValidation = errors.New("validation failed")
	// ErrUpstream means a dependency (completion service, storage)
	// failed.
	ErrUpstream = errors.New("upstream service failure")
	// ErrConflict means a uniqueness constraint was violated.
	ErrConflict = errors.New("conflict")
)
