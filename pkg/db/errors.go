// Package db pkg/db/errors.go provides errors for the db package.

package db

import "errors"

var (
	// Core database errors.

	ErrFailedToBeginTx   = errors.New("failed to begin transaction")
	ErrFailedToCommit    = errors.New("failed to commit transaction")
	ErrFailedToScan      = errors.New("failed to scan")
	ErrFailedToQuery     = errors.New("failed to query")
	ErrFailedToInsert    = errors.New("failed to insert")
	ErrFailedToClean     = errors.New("failed to clean")
	ErrFailedToInit      = errors.New("failed to initialize schema")
	ErrFailedToEnableWAL = errors.New("failed to enable WAL mode")
	ErrFailedOpenDB      = errors.New("failed to open database")

	// Input errors.

	ErrMissingGPUUUID = errors.New("gpu_uuid is required")
	ErrMissingEventID = errors.New("event_id is required")
	ErrInvalidGPURef  = errors.New("invalid gpu reference")
)
