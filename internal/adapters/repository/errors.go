package repository

import "errors"

// Sentinel kinds for ledger store errors.
var (
	ErrTeamNotFound   = errors.New("team not found")
	ErrMatchNotFound  = errors.New("match not found")
	ErrDuplicateMatch = errors.New("duplicate match")
)
