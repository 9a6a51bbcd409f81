package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/pitchledger/internal/ingest"
)

// HTTPClient wraps http.Client with a timeout and context-aware helpers.
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// checkServerHealth verifies the ledger server is running before any
// download starts.
func checkServerHealth(ctx context.Context, client *HTTPClient, baseURL string) error {
	resp, err := client.Get(ctx, baseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrServerDown, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health check returned %d", ErrServerDown, resp.StatusCode)
	}
	return nil
}

// fetchSource downloads and parses one season file. A 404 is expected for
// seasons the site does not carry and returns no rows and no error.
func fetchSource(ctx context.Context, client *HTTPClient, src Source) ([]ingest.Row, error) {
	resp, err := client.Get(ctx, src.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.URL, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		_ = resp.Body.Close()
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %d", ErrBadFeed, src.URL, resp.StatusCode)
	}
	defer func() { _ = resp.Body.Close() }()

	rows, err := ParseCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src.URL, err)
	}
	return rows, nil
}

// ingestRequest mirrors the server's POST /api/ingest schema.
type ingestRequest struct {
	League string       `json:"league"`
	Rows   []ingest.Row `json:"rows"`
}

// submitBatch posts one file's rows to the server and returns its report.
// Batches are submitted one at a time; the server holds a single run lock
// and answers 409 to anything overlapping.
func submitBatch(ctx context.Context, client *HTTPClient, baseURL, league string, rows []ingest.Row) (ingest.Report, error) {
	resp, err := client.Post(ctx, baseURL+"/api/ingest", ingestRequest{League: league, Rows: rows})
	if err != nil {
		return ingest.Report{}, fmt.Errorf("%w: %w", ErrSubmitBatch, err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return ingest.Report{}, fmt.Errorf("%w: %w", ErrSubmitBatch, err)
	}
	if resp.StatusCode != http.StatusOK {
		return ingest.Report{}, fmt.Errorf("%w: server returned %d: %s", ErrSubmitBatch, resp.StatusCode, string(body))
	}
	var report ingest.Report
	if err := json.Unmarshal(body, &report); err != nil {
		return ingest.Report{}, fmt.Errorf("%w: decode report: %w", ErrSubmitBatch, err)
	}
	return report, nil
}
