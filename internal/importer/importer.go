// Package importer pulls season CSV files from football-data.co.uk and feeds
// them to a running ledger server as ingestion batches. Downloads run on a
// worker pool; submission is strictly sequential because the server holds a
// single run lock per batch.
package importer

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/pitchledger/internal/ingest"
	"github.com/okian/pitchledger/pkg/logger"
)

// Config holds configuration for one import run.
type Config struct {
	BaseURL   string        // Base URL of the ledger server
	FeedURL   string        // Base URL of the CSV feed
	FirstYear int           // First season start year, e.g. 2020
	LastYear  int           // Last season start year, inclusive
	Codes     []string      // Division codes to pull, e.g. E0, SP1
	Workers   int           // Number of concurrent download workers
	Timeout   time.Duration // HTTP request timeout
	Recompute bool          // Trigger a full recompute after the last batch
}

// Stats holds import run statistics.
type Stats struct {
	FilesFetched  int
	FilesMissing  int
	FilesFailed   int
	RowsFetched   int
	RowsAdded     int
	RowsDuplicate int
	RowsInvalid   int
	StartTime     time.Time
	Duration      time.Duration
}

// fetched is one downloaded file waiting for submission.
type fetched struct {
	src  Source
	rows []ingest.Row
	err  error
}

// Run executes the complete import: health check, concurrent downloads,
// sequential batch submission, optional recompute.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	sources := Sources(config.FeedURL, config.FirstYear, config.LastYear, config.Codes)
	log.Info(ctx, "starting match import",
		logger.String("server", config.BaseURL),
		logger.String("feed", config.FeedURL),
		logger.Int("files", len(sources)),
		logger.Int("workers", config.Workers),
	)

	client := newHTTPClient(config.Timeout)
	if err := checkServerHealth(ctx, client, config.BaseURL); err != nil {
		return stats, err
	}

	results := downloadAll(ctx, client, sources, config.Workers)

	// Submit in source order so earlier seasons land first.
	sort.Slice(results, func(i, j int) bool {
		if results[i].src.Season != results[j].src.Season {
			return results[i].src.Season < results[j].src.Season
		}
		return results[i].src.Code < results[j].src.Code
	})

	for _, f := range results {
		switch {
		case f.err != nil:
			stats.FilesFailed++
			log.Warn(ctx, "skipping file", logger.String("url", f.src.URL), logger.Error(f.err))
			continue
		case f.rows == nil:
			stats.FilesMissing++
			continue
		}
		stats.FilesFetched++
		stats.RowsFetched += len(f.rows)

		report, err := submitBatch(ctx, client, config.BaseURL, LeagueName(f.src.Code), f.rows)
		if err != nil {
			return stats, fmt.Errorf("submit %s: %w", f.src.URL, err)
		}
		stats.RowsAdded += report.Added
		stats.RowsDuplicate += report.SkipCount(ingest.ReasonDuplicateMatch)
		stats.RowsInvalid += report.SkipCount(ingest.ReasonInvalidRow)

		log.Info(ctx, "batch ingested",
			logger.String("url", f.src.URL),
			logger.String("league", LeagueName(f.src.Code)),
			logger.Int("added", report.Added),
			logger.Int("skipped", len(report.Skipped)),
		)
	}

	if config.Recompute {
		if err := triggerRecompute(ctx, client, config.BaseURL); err != nil {
			return stats, err
		}
	}

	stats.Duration = time.Since(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

// downloadAll fetches every source on a bounded worker pool and collects
// the results.
func downloadAll(ctx context.Context, client *HTTPClient, sources []Source, workers int) []fetched {
	if workers < 1 {
		workers = 1
	}

	srcChan := make(chan Source, workers*2)
	out := make([]fetched, 0, len(sources))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for src := range srcChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				rows, err := fetchSource(ctx, client, src)
				mu.Lock()
				out = append(out, fetched{src: src, rows: rows, err: err})
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(srcChan)
		for _, src := range sources {
			select {
			case <-ctx.Done():
				return
			case srcChan <- src:
			}
		}
	}()

	wg.Wait()
	return out
}

// triggerRecompute asks the server for a full ledger replay once every batch
// is in.
func triggerRecompute(ctx context.Context, client *HTTPClient, baseURL string) error {
	resp, err := client.Post(ctx, baseURL+"/api/recompute", struct{}{})
	if err != nil {
		return fmt.Errorf("trigger recompute: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("trigger recompute: %w", err)
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("recompute returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// displayFinalStats logs the final import statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	logger.Get().Info(ctx, "import finished",
		logger.Int("filesFetched", stats.FilesFetched),
		logger.Int("filesMissing", stats.FilesMissing),
		logger.Int("filesFailed", stats.FilesFailed),
		logger.Int("rowsFetched", stats.RowsFetched),
		logger.Int("rowsAdded", stats.RowsAdded),
		logger.Int("rowsDuplicate", stats.RowsDuplicate),
		logger.Int("rowsInvalid", stats.RowsInvalid),
		logger.Duration("took", stats.Duration),
	)
}
