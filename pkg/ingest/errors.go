// Package ingest pkg/ingest/errors.go provides errors for the ingest package.

package ingest

import "errors"

var (
	// ErrValidation marks rejected input; nothing was written.
	ErrValidation = errors.New("validation failed")

	// ErrStoreUnavailable marks a failed event store write. Prior steps of
	// the pipeline are not rolled back; the caller is expected to resubmit
	// a later sample.
	ErrStoreUnavailable = errors.New("event store unavailable")
)
