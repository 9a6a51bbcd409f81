package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/okian/pitchledger/internal/importer"
	"github.com/okian/pitchledger/pkg/logger"
)

// Default configuration constants.
const (
	defaultFirstYear  = 2020
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 30 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the ledger server")
		feedURL   = flag.String("feed", importer.DefaultBaseURL, "Base URL of the CSV feed")
		fromYear  = flag.Int("from", defaultFirstYear, "First season start year")
		toYear    = flag.Int("to", 0, "Last season start year, inclusive (default: same as -from)")
		codes     = flag.String("codes", "E0,E1,SP1,D1,I1,F1", "Comma-separated division codes")
		workers   = flag.Int("workers", runtime.NumCPU(), "Number of concurrent download workers")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		recompute = flag.Bool("recompute", false, "Trigger a full ledger recompute after the last batch")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		importer.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	last := *toYear
	if last == 0 {
		last = *fromYear
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &importer.Config{
		BaseURL:   *baseURL,
		FeedURL:   *feedURL,
		FirstYear: *fromYear,
		LastYear:  last,
		Codes:     strings.Split(*codes, ","),
		Workers:   *workers,
		Timeout:   *timeout,
		Recompute: *recompute,
	}

	if _, err := importer.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Import failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
