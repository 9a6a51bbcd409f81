// Package outcome normalizes raw match scores into symmetric result points.
package outcome

// Points maps a final score to the (home, away) result points fed into the
// rating update: win 1, draw 0.5, loss 0. The two values always sum to 1.
// Scores are assumed already validated as non-negative by the caller.
func Points(homeGoals, awayGoals int) (home, away float64) {
	switch {
	case homeGoals > awayGoals:
		return 1, 0
	case homeGoals < awayGoals:
		return 0, 1
	default:
		return 0.5, 0.5
	}
}
