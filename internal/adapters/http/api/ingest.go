// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/pitchledger/internal/app"
	"github.com/okian/pitchledger/internal/ingest"
)

// IngestDependencies defines the interface for batch ingestion.
type IngestDependencies interface {
	IngestBatch(ctx context.Context, rows []ingest.Row, league string) (ingest.Report, error)
}

// IngestHandler handles batch ingestion requests.
type IngestHandler struct {
	deps IngestDependencies
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(deps IngestDependencies) *IngestHandler {
	return &IngestHandler{deps: deps}
}

// ingestRequest mirrors the wire schema for POST /api/ingest.
type ingestRequest struct {
	League string       `json:"league"`
	Rows   []ingest.Row `json:"rows"`
}

func (i ingestRequest) validate() error {
	switch {
	case strings.TrimSpace(i.League) == "":
		return errors.New("missing league")
	case len(i.Rows) == 0:
		return errors.New("empty rows")
	}
	return nil
}

// HandlePostIngest handles POST /api/ingest requests. A second batch arriving
// while one is running is rejected with 409, not queued.
func (h *IngestHandler) HandlePostIngest(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_ingest"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	report, err := h.deps.IngestBatch(r.Context(), req.Rows, strings.TrimSpace(req.League))
	switch {
	case errors.Is(err, app.ErrOperationInFlight):
		writeError(w, http.StatusConflict, "operation_in_flight", Wrap(op, err))
		return
	case errors.Is(err, app.ErrBatchTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "batch_too_large", Wrap(op, err))
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}
