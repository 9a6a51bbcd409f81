package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okian/pitchledger/internal/domain/model"
)

// Row is one loosely-typed external match record. All fields arrive as
// strings; validation and parsing happen inside the pipeline so a malformed
// row can be skipped without aborting the batch.
type Row struct {
	Date      string `json:"date"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeScore string `json:"home_score"`
	AwayScore string `json:"away_score"`
}

// parsedRow is a fully validated row ready for staging.
type parsedRow struct {
	date      time.Time
	home      string
	away      string
	homeGoals int
	awayGoals int
}

// dateLayouts are tried in order. Day-first forms come first because the
// football-data CSV feed writes dates that way.
var dateLayouts = []string{
	"02/01/2006",
	"02/01/06",
	model.DateLayout,
}

func (r Row) normalize() (parsedRow, error) {
	home := cleanName(r.HomeTeam)
	away := cleanName(r.AwayTeam)
	if home == "" {
		return parsedRow{}, fmt.Errorf("%w: blank home team", ErrInvalidRow)
	}
	if away == "" {
		return parsedRow{}, fmt.Errorf("%w: blank away team", ErrInvalidRow)
	}

	date, err := parseDate(r.Date)
	if err != nil {
		return parsedRow{}, err
	}
	homeGoals, err := parseScore(r.HomeScore, "home")
	if err != nil {
		return parsedRow{}, err
	}
	awayGoals, err := parseScore(r.AwayScore, "away")
	if err != nil {
		return parsedRow{}, err
	}

	return parsedRow{date: date, home: home, away: away, homeGoals: homeGoals, awayGoals: awayGoals}, nil
}

// cleanName trims a team name and rejects the literal "nan" some tabular
// exports emit for missing cells.
func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "nan") {
		return ""
	}
	return name
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: blank date", ErrInvalidRow)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return model.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable date %q", ErrInvalidRow, raw)
}

// parseScore accepts integer scores, also in float form ("2.0") as emitted
// by some CSV exports, and rejects anything negative or fractional.
func parseScore(raw, side string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: missing %s score", ErrInvalidRow, side)
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("%w: negative %s score %d", ErrInvalidRow, side, n)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("%w: unparseable %s score %q", ErrInvalidRow, side, raw)
	}
	if f < 0 {
		return 0, fmt.Errorf("%w: negative %s score %v", ErrInvalidRow, side, f)
	}
	return int(f), nil
}
