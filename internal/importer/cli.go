package importer

import (
	"os"
)

// ShowHelp prints usage information for the match importer.
func ShowHelp() {
	os.Stdout.WriteString(`PitchLedger Match Importer
==========================

Downloads season CSV files from football-data.co.uk and submits them to a
running ledger server as ingestion batches.

Usage:
  go run cmd/import-matches/main.go [options]

Options:
  -url string
        Base URL of the ledger server (default "http://localhost:9080")
  -feed string
        Base URL of the CSV feed (default "https://www.football-data.co.uk")
  -from int
        First season start year (default 2020)
  -to int
        Last season start year, inclusive (default: same as -from)
  -codes string
        Comma-separated division codes (default "E0,E1,SP1,D1,I1,F1")
  -workers int
        Number of concurrent download workers (default CPU cores)
  -timeout duration
        HTTP request timeout (default 30s)
  -recompute
        Trigger a full ledger recompute after the last batch
  -help
        Show this help message

Examples:
  # Import the 2023/24 Premier League season
  go run cmd/import-matches/main.go -from 2023 -codes E0

  # Import four seasons of the top five leagues and recompute
  go run cmd/import-matches/main.go -from 2020 -to 2023 -recompute
`)
}
