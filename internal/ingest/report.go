package ingest

// SkipReason classifies why a row was left out of a batch.
type SkipReason string

// Skip reasons surfaced in the batch report.
const (
	ReasonInvalidRow     SkipReason = "invalid_row"
	ReasonDuplicateMatch SkipReason = "duplicate_match"
)

// Skip records one skipped row. Row is the zero-based position in the
// submitted batch.
type Skip struct {
	Row    int        `json:"row"`
	Reason SkipReason `json:"reason"`
	Detail string     `json:"detail,omitempty"`
}

// Report summarizes one ingestion batch. Every skipped row is accounted
// for: len(Skipped) + Added == number of submitted rows.
type Report struct {
	RunID   string `json:"run_id"`
	League  string `json:"league"`
	Added   int    `json:"added"`
	Skipped []Skip `json:"skipped"`
}

// SkipCount returns how many rows were skipped for the given reason.
func (r Report) SkipCount(reason SkipReason) int {
	n := 0
	for _, s := range r.Skipped {
		if s.Reason == reason {
			n++
		}
	}
	return n
}
