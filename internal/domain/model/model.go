// Package model contains domain values passed between layers.
package model

import (
	"fmt"
	"time"
)

// Team is a competitive participant. Unique by name; the league label is
// refreshed to the most recently ingested value on every sighting.
type Team struct {
	ID     int64
	Name   string
	League string
}

// Match is an immutable scored event between two teams on a calendar date.
type Match struct {
	ID         int64
	Date       time.Time
	HomeTeamID int64
	AwayTeamID int64
	HomeScore  int
	AwayScore  int
}

// Key returns the dedup identity of the match.
func (m Match) Key() MatchKey {
	return MatchKey{Date: m.Date, HomeTeamID: m.HomeTeamID, AwayTeamID: m.AwayTeamID}
}

// MatchKey identifies a match for deduplication. A second match between the
// same pair on the same date is a duplicate even if the scores differ.
type MatchKey struct {
	Date       time.Time
	HomeTeamID int64
	AwayTeamID int64
}

// String renders the key in a stable form usable as a dedupe token.
func (k MatchKey) String() string {
	return fmt.Sprintf("%s|%d|%d", k.Date.Format(DateLayout), k.HomeTeamID, k.AwayTeamID)
}

// RatingEntry is an append-only snapshot of one team's rating as of one date.
// Entries are never updated in place; the current rating of a team is the
// entry with the maximum date, tie-broken by entry id.
type RatingEntry struct {
	ID     int64
	TeamID int64
	Date   time.Time
	Rating float64
}

// DateLayout is the canonical wire format for match dates.
const DateLayout = "2006-01-02"

// Day normalizes t to a calendar date: midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a normalized calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
