package app

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrOperationInFlight rejects an ingest or recompute attempted while
	// another one holds the global run lock.
	ErrOperationInFlight = errors.New("another ingest or recompute is in flight")

	// ErrBatchTooLarge rejects batches above the configured row cap.
	ErrBatchTooLarge = errors.New("batch exceeds configured row limit")
)
