package importer

import "errors"

// Sentinel kinds for importer errors.
var (
	ErrBadFeed     = errors.New("unusable feed file")
	ErrServerDown  = errors.New("ledger server unreachable")
	ErrSubmitBatch = errors.New("batch submission failed")
)
