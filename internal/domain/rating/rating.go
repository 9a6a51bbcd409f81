// Package rating implements the Elo update rule used for the ledger.
//
// Both functions are pure. Update must always be called with the opponent's
// pre-update rating; chaining a freshly updated rating into the opposing
// side's computation breaks the zero-sum property.
package rating

import "math"

const (
	// Default is the implicit rating of a team with no ledger entries.
	Default = 1000.0

	// DefaultK is the standard sensitivity constant. Callers may override
	// it per operation, e.g. to replay history with a different K.
	DefaultK = 20.0

	// scale is the logistic divisor of the expected-score curve.
	scale = 400.0
)

// Expected returns the probability that a team rated a beats a team rated b.
// Always in (0, 1); Expected(r, r) == 0.5 for any r.
func Expected(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/scale))
}

// Update returns the new rating for a team rated a after a result against a
// team rated b. actual is the result points for side a (1, 0.5 or 0).
// The denominator of Expected is always >= 1, so the result is always finite.
func Update(a, b, actual, k float64) float64 {
	return a + k*(actual-Expected(a, b))
}
