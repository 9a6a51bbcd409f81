package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/okian/pitchledger/internal/domain/model"
	"github.com/okian/pitchledger/internal/domain/rating"
)

// teamRow is the teams table. Names are unique: one canonical team per name.
type teamRow struct {
	ID     int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name   string `gorm:"column:name;size:100;not null;uniqueIndex"`
	League string `gorm:"column:league;size:100;not null"`
}

func (teamRow) TableName() string { return "teams" }

// matchRow is the matches table. The composite unique index enforces the
// (date, home, away) dedup invariant at the schema level as well.
type matchRow struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Date       time.Time `gorm:"column:date;not null;uniqueIndex:idx_matches_key,priority:1"`
	HomeTeamID int64     `gorm:"column:home_team_id;not null;uniqueIndex:idx_matches_key,priority:2"`
	AwayTeamID int64     `gorm:"column:away_team_id;not null;uniqueIndex:idx_matches_key,priority:3"`
	HomeScore  int       `gorm:"column:home_score;not null"`
	AwayScore  int       `gorm:"column:away_score;not null"`
}

func (matchRow) TableName() string { return "matches" }

// ratingRow is the elo_ratings table, append-only.
type ratingRow struct {
	ID     int64     `gorm:"column:id;primaryKey;autoIncrement"`
	TeamID int64     `gorm:"column:team_id;not null;index"`
	Date   time.Time `gorm:"column:date;not null"`
	Rating float64   `gorm:"column:rating;not null"`
}

func (ratingRow) TableName() string { return "elo_ratings" }

// OpenSQLite opens (and migrates) a SQLite-backed store at dsn.
// Use ":memory:" for an ephemeral database.
func OpenSQLite(ctx context.Context, dsn string) (*GormStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return NewGormStore(db)
}

// GormStore implements Store on top of a gorm-managed relational database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db and migrates the schema.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&teamRow{}, &matchRow{}, &ratingRow{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) FindTeamByName(ctx context.Context, name string) (model.Team, error) {
	var row teamRow
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Team{}, ErrTeamNotFound
	}
	if err != nil {
		return model.Team{}, fmt.Errorf("find team by name: %w", err)
	}
	return teamFromRow(row), nil
}

func (s *GormStore) CreateTeam(ctx context.Context, name, league string) (model.Team, error) {
	row := teamRow{Name: name, League: league}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.Team{}, fmt.Errorf("create team: %w", err)
	}
	return teamFromRow(row), nil
}

func (s *GormStore) SetTeamLeague(ctx context.Context, id int64, league string) error {
	res := s.db.WithContext(ctx).Model(&teamRow{}).Where("id = ?", id).Update("league", league)
	if res.Error != nil {
		return fmt.Errorf("set team league: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTeamNotFound
	}
	return nil
}

func (s *GormStore) GetTeam(ctx context.Context, id int64) (model.Team, error) {
	var row teamRow
	err := s.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Team{}, ErrTeamNotFound
	}
	if err != nil {
		return model.Team{}, fmt.Errorf("get team: %w", err)
	}
	return teamFromRow(row), nil
}

func (s *GormStore) ListTeams(ctx context.Context) ([]model.Team, error) {
	var rows []teamRow
	if err := s.db.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	teams := make([]model.Team, len(rows))
	for i, r := range rows {
		teams[i] = teamFromRow(r)
	}
	return teams, nil
}

func (s *GormStore) CreateMatch(ctx context.Context, m model.Match) (model.Match, error) {
	row := matchRow{
		Date:       model.Day(m.Date),
		HomeTeamID: m.HomeTeamID,
		AwayTeamID: m.AwayTeamID,
		HomeScore:  m.HomeScore,
		AwayScore:  m.AwayScore,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.Match{}, ErrDuplicateMatch
		}
		return model.Match{}, fmt.Errorf("create match: %w", err)
	}
	return matchFromRow(row), nil
}

func (s *GormStore) GetMatch(ctx context.Context, id int64) (model.Match, error) {
	var row matchRow
	err := s.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Match{}, ErrMatchNotFound
	}
	if err != nil {
		return model.Match{}, fmt.Errorf("get match: %w", err)
	}
	return matchFromRow(row), nil
}

func (s *GormStore) MatchExists(ctx context.Context, key model.MatchKey) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&matchRow{}).
		Where("date = ? AND home_team_id = ? AND away_team_id = ?",
			model.Day(key.Date), key.HomeTeamID, key.AwayTeamID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("match exists: %w", err)
	}
	return count > 0, nil
}

func (s *GormStore) ListMatchesOrdered(ctx context.Context) ([]model.Match, error) {
	var rows []matchRow
	if err := s.db.WithContext(ctx).Order("date asc, id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	matches := make([]model.Match, len(rows))
	for i, r := range rows {
		matches[i] = matchFromRow(r)
	}
	return matches, nil
}

func (s *GormStore) CountMatches(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&matchRow{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count matches: %w", err)
	}
	return count, nil
}

func (s *GormStore) AppendRatings(ctx context.Context, entries ...model.RatingEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]ratingRow, len(entries))
	for i, e := range entries {
		rows[i] = ratingRow{TeamID: e.TeamID, Date: model.Day(e.Date), Rating: e.Rating}
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("append ratings: %w", err)
	}
	return nil
}

func (s *GormStore) LatestRating(ctx context.Context, teamID int64) (float64, error) {
	var row ratingRow
	err := s.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("date desc, id desc").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rating.Default, nil
	}
	if err != nil {
		return 0, fmt.Errorf("latest rating: %w", err)
	}
	return row.Rating, nil
}

func (s *GormStore) ListRatings(ctx context.Context) ([]model.RatingEntry, error) {
	var rows []ratingRow
	if err := s.db.WithContext(ctx).Order("date asc, id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	entries := make([]model.RatingEntry, len(rows))
	for i, r := range rows {
		entries[i] = model.RatingEntry{ID: r.ID, TeamID: r.TeamID, Date: r.Date, Rating: r.Rating}
	}
	return entries, nil
}

func (s *GormStore) CountRatings(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&ratingRow{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count ratings: %w", err)
	}
	return count, nil
}

func (s *GormStore) WipeRatings(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&ratingRow{}).Error; err != nil {
		return fmt.Errorf("wipe ratings: %w", err)
	}
	return nil
}

func (s *GormStore) CurrentRatings(ctx context.Context) ([]TeamRating, error) {
	var rows []TeamRating
	err := s.db.WithContext(ctx).Raw(`
		SELECT t.id AS team_id, t.name, t.league, r.rating, r.date
		FROM teams t
		JOIN elo_ratings r ON r.id = (
			SELECT r2.id FROM elo_ratings r2
			WHERE r2.team_id = t.id
			ORDER BY r2.date DESC, r2.id DESC
			LIMIT 1
		)
		ORDER BY r.rating DESC, t.id ASC`).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("current ratings: %w", err)
	}
	return rows, nil
}

func (s *GormStore) Transact(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func teamFromRow(r teamRow) model.Team {
	return model.Team{ID: r.ID, Name: r.Name, League: r.League}
}

func matchFromRow(r matchRow) model.Match {
	return model.Match{
		ID:         r.ID,
		Date:       model.Day(r.Date),
		HomeTeamID: r.HomeTeamID,
		AwayTeamID: r.AwayTeamID,
		HomeScore:  r.HomeScore,
		AwayScore:  r.AwayScore,
	}
}
