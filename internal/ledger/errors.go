package ledger

import "errors"

// Sentinel kinds for updater errors.
var (
	ErrMissingParticipant = errors.New("missing participant")
	ErrInvalidScore       = errors.New("invalid score")
)
