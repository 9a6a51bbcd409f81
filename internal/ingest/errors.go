package ingest

import "errors"

// ErrInvalidRow marks a row that failed validation. It is recovered per row
// and surfaces only in the batch report; anything else aborts the batch.
var ErrInvalidRow = errors.New("invalid row")
