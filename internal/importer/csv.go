package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/okian/pitchledger/internal/ingest"
)

// Columns the feed must carry for a file to be usable. Everything else
// (odds, referees, shot counts) is ignored.
var requiredColumns = []string{"Date", "HomeTeam", "AwayTeam", "FTHG", "FTAG"}

// ParseCSV reads one season file into ingestion rows. Rows stay raw strings;
// per-row validation happens server-side so a bad line here only costs that
// line, not the file.
func ParseCSV(r io.Reader) ([]ingest.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var rows []ingest.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}
		row, ok := rowFromRecord(record, idx)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// columnIndex locates every required column in the header.
func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrBadFeed, col)
		}
	}
	return idx, nil
}

// rowFromRecord pulls the required cells out of one record. Short records,
// common at the tail of the feed's files, are dropped.
func rowFromRecord(record []string, idx map[string]int) (ingest.Row, bool) {
	cell := func(col string) (string, bool) {
		i := idx[col]
		if i >= len(record) {
			return "", false
		}
		return record[i], true
	}
	date, ok := cell("Date")
	if !ok {
		return ingest.Row{}, false
	}
	home, ok := cell("HomeTeam")
	if !ok {
		return ingest.Row{}, false
	}
	away, ok := cell("AwayTeam")
	if !ok {
		return ingest.Row{}, false
	}
	fthg, ok := cell("FTHG")
	if !ok {
		return ingest.Row{}, false
	}
	ftag, ok := cell("FTAG")
	if !ok {
		return ingest.Row{}, false
	}
	if strings.TrimSpace(date) == "" && strings.TrimSpace(home) == "" {
		return ingest.Row{}, false
	}
	return ingest.Row{
		Date:      date,
		HomeTeam:  home,
		AwayTeam:  away,
		HomeScore: fthg,
		AwayScore: ftag,
	}, true
}
