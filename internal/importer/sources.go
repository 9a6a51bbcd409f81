package importer

import (
	"fmt"
	"path"
	"strings"
)

// DefaultBaseURL is the public football-data.co.uk download root.
const DefaultBaseURL = "https://www.football-data.co.uk"

// leagueNames maps football-data division codes to human league labels.
// Teams ingested from a file inherit the label of its division.
var leagueNames = map[string]string{
	"E0":  "Premier League",
	"E1":  "Championship",
	"SP1": "La Liga",
	"D1":  "Bundesliga",
	"I1":  "Serie A",
	"F1":  "Ligue 1",
	"N1":  "Eredivisie",
	"P1":  "Primeira Liga",
}

// LeagueName resolves a division code to its league label. Unknown codes
// fall back to the code itself so nothing is silently dropped.
func LeagueName(code string) string {
	if name, ok := leagueNames[code]; ok {
		return name
	}
	return code
}

// Source is one downloadable season file.
type Source struct {
	URL    string
	Code   string
	Season string
}

// seasonToken renders a start year as the site's four-digit season token,
// e.g. 2023 -> "2324".
func seasonToken(startYear int) string {
	return fmt.Sprintf("%02d%02d", startYear%100, (startYear+1)%100)
}

// Sources builds the URL matrix for every (season, division) pair. Files
// live under {base}/mmz4281/{season}/{code}.csv.
func Sources(baseURL string, firstYear, lastYear int, codes []string) []Source {
	var out []Source
	for year := firstYear; year <= lastYear; year++ {
		season := seasonToken(year)
		for _, code := range codes {
			out = append(out, Source{
				URL:    fmt.Sprintf("%s/mmz4281/%s/%s.csv", strings.TrimRight(baseURL, "/"), season, code),
				Code:   code,
				Season: season,
			})
		}
	}
	return out
}

// CodeFromURL extracts the division code from a season file URL.
func CodeFromURL(url string) string {
	return strings.TrimSuffix(path.Base(url), ".csv")
}
