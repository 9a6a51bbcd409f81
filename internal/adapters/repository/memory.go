package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/pitchledger/internal/domain/model"
	"github.com/okian/pitchledger/internal/domain/rating"
)

// MemoryStore implements Store entirely in memory. It backs tests and
// exploratory runs; the transactional view works on a deep copy of the state
// that is swapped in only when the callback succeeds.
type MemoryStore struct {
	mu        sync.RWMutex
	state     *memState
	appendErr error
}

type memState struct {
	teams      []model.Team
	matches    []model.Match
	ratings    []model.RatingEntry
	nextTeam   int64
	nextMatch  int64
	nextRating int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memState{nextTeam: 1, nextMatch: 1, nextRating: 1}}
}

// FailAppendsWith makes every subsequent AppendRatings call fail with err.
// Pass nil to restore normal behavior. Test hook for persistence failures.
func (s *MemoryStore) FailAppendsWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendErr = err
}

func (s *MemoryStore) FindTeamByName(_ context.Context, name string) (model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.state.teams {
		if t.Name == name {
			return t, nil
		}
	}
	return model.Team{}, ErrTeamNotFound
}

func (s *MemoryStore) CreateTeam(_ context.Context, name, league string) (model.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := model.Team{ID: s.state.nextTeam, Name: name, League: league}
	s.state.nextTeam++
	s.state.teams = append(s.state.teams, t)
	return t, nil
}

func (s *MemoryStore) SetTeamLeague(_ context.Context, id int64, league string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.teams {
		if s.state.teams[i].ID == id {
			s.state.teams[i].League = league
			return nil
		}
	}
	return ErrTeamNotFound
}

func (s *MemoryStore) GetTeam(_ context.Context, id int64) (model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.state.teams {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Team{}, ErrTeamNotFound
}

func (s *MemoryStore) ListTeams(_ context.Context) ([]model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Team, len(s.state.teams))
	copy(out, s.state.teams)
	return out, nil
}

func (s *MemoryStore) CreateMatch(_ context.Context, m model.Match) (model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.Date = model.Day(m.Date)
	key := m.Key()
	for _, existing := range s.state.matches {
		if existing.Key() == key {
			return model.Match{}, ErrDuplicateMatch
		}
	}
	m.ID = s.state.nextMatch
	s.state.nextMatch++
	s.state.matches = append(s.state.matches, m)
	return m, nil
}

func (s *MemoryStore) GetMatch(_ context.Context, id int64) (model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.state.matches {
		if m.ID == id {
			return m, nil
		}
	}
	return model.Match{}, ErrMatchNotFound
}

func (s *MemoryStore) MatchExists(_ context.Context, key model.MatchKey) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key.Date = model.Day(key.Date)
	for _, m := range s.state.matches {
		if m.Key() == key {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) ListMatchesOrdered(_ context.Context) ([]model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Match, len(s.state.matches))
	copy(out, s.state.matches)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) CountMatches(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.state.matches)), nil
}

func (s *MemoryStore) AppendRatings(_ context.Context, entries ...model.RatingEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	for _, e := range entries {
		e.ID = s.state.nextRating
		e.Date = model.Day(e.Date)
		s.state.nextRating++
		s.state.ratings = append(s.state.ratings, e)
	}
	return nil
}

func (s *MemoryStore) LatestRating(_ context.Context, teamID int64) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	latest, ok := s.latestEntryLocked(teamID)
	if !ok {
		return rating.Default, nil
	}
	return latest.Rating, nil
}

func (s *MemoryStore) latestEntryLocked(teamID int64) (model.RatingEntry, bool) {
	var latest model.RatingEntry
	found := false
	for _, e := range s.state.ratings {
		if e.TeamID != teamID {
			continue
		}
		if !found || e.Date.After(latest.Date) || (e.Date.Equal(latest.Date) && e.ID > latest.ID) {
			latest = e
			found = true
		}
	}
	return latest, found
}

func (s *MemoryStore) ListRatings(_ context.Context) ([]model.RatingEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.RatingEntry, len(s.state.ratings))
	copy(out, s.state.ratings)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) CountRatings(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.state.ratings)), nil
}

func (s *MemoryStore) WipeRatings(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ratings = nil
	return nil
}

func (s *MemoryStore) CurrentRatings(_ context.Context) ([]TeamRating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rows []TeamRating
	for _, t := range s.state.teams {
		latest, ok := s.latestEntryLocked(t.ID)
		if !ok {
			continue
		}
		rows = append(rows, TeamRating{
			TeamID: t.ID,
			Name:   t.Name,
			League: t.League,
			Rating: latest.Rating,
			Date:   latest.Date,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Rating != rows[j].Rating {
			return rows[i].Rating > rows[j].Rating
		}
		return rows[i].TeamID < rows[j].TeamID
	})
	return rows, nil
}

// Transact clones the full state, runs fn against the clone, and swaps the
// clone in only if fn succeeds. Errors leave the store untouched.
func (s *MemoryStore) Transact(ctx context.Context, fn func(Store) error) error {
	s.mu.Lock()
	clone := &MemoryStore{state: s.state.clone(), appendErr: s.appendErr}
	s.mu.Unlock()

	if err := fn(clone); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = clone.state
	s.mu.Unlock()
	return nil
}

func (st *memState) clone() *memState {
	c := &memState{
		teams:      make([]model.Team, len(st.teams)),
		matches:    make([]model.Match, len(st.matches)),
		ratings:    make([]model.RatingEntry, len(st.ratings)),
		nextTeam:   st.nextTeam,
		nextMatch:  st.nextMatch,
		nextRating: st.nextRating,
	}
	copy(c.teams, st.teams)
	copy(c.matches, st.matches)
	copy(c.ratings, st.ratings)
	return c
}
