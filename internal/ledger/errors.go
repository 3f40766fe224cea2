package ledger

import "errors"

// Ledger errors.
var (
	// ErrNotFound is returned when a fingerprint has no contribution record.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when input validation fails, e.g. a
	// malformed fingerprint key.
	ErrInvalidInput = errors.New("invalid input")
)
