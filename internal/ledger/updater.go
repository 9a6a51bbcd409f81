// Package ledger implements the incremental rating updater: one match in,
// two rating entries out.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/pitchledger/internal/adapters/repository"
	"github.com/okian/pitchledger/internal/domain/model"
	"github.com/okian/pitchledger/internal/domain/outcome"
	"github.com/okian/pitchledger/internal/domain/rating"
	"github.com/okian/pitchledger/pkg/metrics"
)

// Compute derives both post-match ratings from the two pre-match ratings.
// Each side is updated against the other's PRE-update rating; feeding an
// already-updated rating into the opposing computation biases the result and
// breaks the zero-sum property.
func Compute(homeBefore, awayBefore float64, homeGoals, awayGoals int, k float64) (newHome, newAway float64) {
	homePoints, awayPoints := outcome.Points(homeGoals, awayGoals)
	newHome = rating.Update(homeBefore, awayBefore, homePoints, k)
	newAway = rating.Update(awayBefore, homeBefore, awayPoints, k)
	return newHome, newAway
}

// Updater applies single matches to the ledger through a Store.
type Updater struct {
	store repository.Store
}

// NewUpdater creates an Updater on top of store.
func NewUpdater(store repository.Store) *Updater {
	return &Updater{store: store}
}

// Apply processes one match: reads both current ratings (default for unrated
// teams), computes both new ratings, and appends two entries dated as the
// match date in one store call. On any error no entries are written.
func (u *Updater) Apply(ctx context.Context, m model.Match, k float64) (newHome, newAway float64, err error) {
	if m.HomeScore < 0 || m.AwayScore < 0 {
		return 0, 0, fmt.Errorf("match %d: %w", m.ID, ErrInvalidScore)
	}
	if _, err := u.store.GetTeam(ctx, m.HomeTeamID); err != nil {
		if errors.Is(err, repository.ErrTeamNotFound) {
			return 0, 0, fmt.Errorf("home team %d: %w", m.HomeTeamID, ErrMissingParticipant)
		}
		return 0, 0, err
	}
	if _, err := u.store.GetTeam(ctx, m.AwayTeamID); err != nil {
		if errors.Is(err, repository.ErrTeamNotFound) {
			return 0, 0, fmt.Errorf("away team %d: %w", m.AwayTeamID, ErrMissingParticipant)
		}
		return 0, 0, err
	}

	homeBefore, err := u.store.LatestRating(ctx, m.HomeTeamID)
	if err != nil {
		return 0, 0, err
	}
	awayBefore, err := u.store.LatestRating(ctx, m.AwayTeamID)
	if err != nil {
		return 0, 0, err
	}

	newHome, newAway = Compute(homeBefore, awayBefore, m.HomeScore, m.AwayScore, k)

	day := model.Day(m.Date)
	err = u.store.AppendRatings(ctx,
		model.RatingEntry{TeamID: m.HomeTeamID, Date: day, Rating: newHome},
		model.RatingEntry{TeamID: m.AwayTeamID, Date: day, Rating: newAway},
	)
	if err != nil {
		return 0, 0, err
	}
	metrics.RecordRatingsAppended(2)
	return newHome, newAway, nil
}
