package ledger

import (
	"context"

	"github.com/okian/pitchledger/internal/adapters/repository"
)

// RatingCache is a per-batch map of team id to running rating. It is seeded
// lazily from the store on first reference and then updated locally after
// every processed row, so bulk ingestion issues at most one latest-rating
// query per team instead of one per row.
//
// The cache is owned by a single ingestion call and must never outlive it;
// it assumes no other writer appends ratings for the cached teams while the
// batch runs.
type RatingCache struct {
	store   repository.Store
	ratings map[int64]float64
}

// NewRatingCache creates an empty cache backed by store.
func NewRatingCache(store repository.Store) *RatingCache {
	return &RatingCache{store: store, ratings: make(map[int64]float64)}
}

// Latest returns the team's running rating, seeding from the store on first
// reference.
func (c *RatingCache) Latest(ctx context.Context, teamID int64) (float64, error) {
	if r, ok := c.ratings[teamID]; ok {
		return r, nil
	}
	r, err := c.store.LatestRating(ctx, teamID)
	if err != nil {
		return 0, err
	}
	c.ratings[teamID] = r
	return r, nil
}

// Put records a freshly computed rating for subsequent rows in the batch.
func (c *RatingCache) Put(teamID int64, r float64) {
	c.ratings[teamID] = r
}

// Len returns the number of cached teams.
func (c *RatingCache) Len() int {
	return len(c.ratings)
}
