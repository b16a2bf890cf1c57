package storage

import "errors"

// Error taxonomy shared across store backends and the engines on top.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMalformedBatch is returned when a fetched batch fails integrity
	// validation (missing key column, ill-typed key value, separator in a
	// text key). The caller must not blindly retry the same batch.
	ErrMalformedBatch = errors.New("malformed batch")

	// ErrInsufficientHistory is a soft outcome: a rolling metric lacks
	// enough raw points. The previous derived table stays untouched.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrStoreUnavailable is returned when the underlying persistence is
	// unreachable. Fatal for the current run; prior data remains valid.
	ErrStoreUnavailable = errors.New("store unavailable")
)
