// Package repository defines the rating ledger store interface and its
// SQLite and in-memory implementations.
package repository

import (
	"context"
	"time"

	"github.com/okian/pitchledger/internal/domain/model"
)

// TeamRating is a flat read row: one team joined with its current rating.
// Returned as a plain list to keep callers off lazy object graphs.
type TeamRating struct {
	TeamID int64     `json:"team_id"`
	Name   string    `json:"name"`
	League string    `json:"league"`
	Rating float64   `json:"rating"`
	Date   time.Time `json:"date"`
}

// Store provides access to teams, matches and the append-only rating ledger.
//
// LatestRating must reflect the most recently appended entry for the team as
// observed by the same caller; incremental chaining depends on that
// read-after-write guarantee.
type Store interface {
	// FindTeamByName returns the team with the given name.
	// Returns ErrTeamNotFound if no such team exists.
	FindTeamByName(ctx context.Context, name string) (model.Team, error)

	// CreateTeam creates a team with the given name and league label.
	CreateTeam(ctx context.Context, name, league string) (model.Team, error)

	// SetTeamLeague overwrites the team's league label.
	SetTeamLeague(ctx context.Context, id int64, league string) error

	// GetTeam returns the team with the given id.
	// Returns ErrTeamNotFound if no such team exists.
	GetTeam(ctx context.Context, id int64) (model.Team, error)

	// ListTeams returns all teams ordered by id.
	ListTeams(ctx context.Context) ([]model.Team, error)

	// CreateMatch persists a new match and returns it with its id set.
	CreateMatch(ctx context.Context, m model.Match) (model.Match, error)

	// GetMatch returns the match with the given id.
	// Returns ErrMatchNotFound if no such match exists.
	GetMatch(ctx context.Context, id int64) (model.Match, error)

	// MatchExists reports whether a match with the given dedup key exists.
	MatchExists(ctx context.Context, key model.MatchKey) (bool, error)

	// ListMatchesOrdered returns every match ordered by (date asc, id asc),
	// the canonical replay order for recomputation.
	ListMatchesOrdered(ctx context.Context) ([]model.Match, error)

	// CountMatches returns the number of persisted matches.
	CountMatches(ctx context.Context) (int64, error)

	// AppendRatings persists new immutable rating entries.
	AppendRatings(ctx context.Context, entries ...model.RatingEntry) error

	// LatestRating returns the team's current rating: the entry with the
	// maximum date, tie-broken by entry id. Teams with no entries have the
	// implicit default rating.
	LatestRating(ctx context.Context, teamID int64) (float64, error)

	// ListRatings returns every rating entry ordered by (date asc, id asc).
	ListRatings(ctx context.Context) ([]model.RatingEntry, error)

	// CountRatings returns the number of ledger entries.
	CountRatings(ctx context.Context) (int64, error)

	// WipeRatings deletes every rating entry. Only the recompute job may
	// call this.
	WipeRatings(ctx context.Context) error

	// CurrentRatings returns one row per rated team with its latest rating,
	// ordered by rating descending.
	CurrentRatings(ctx context.Context) ([]TeamRating, error)

	// Transact runs fn against a transactional view of the store. A nil
	// return commits every write made through that view; a non-nil return
	// rolls all of them back.
	Transact(ctx context.Context, fn func(Store) error) error
}
