// Package dedupe tracks already-seen match keys for at-most-once ingestion.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen match keys so a batch never stages the same
// (date, home, away) triple twice.
type Deduper interface {
	// SeenAndRecord atomically checks whether key was seen and records it
	// if not. Returns true if key was already seen.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord removes a key, allowing it to be staged again. Used when a
	// row was recorded but then failed to stage.
	Unrecord(ctx context.Context, key string)

	// Size returns the number of recorded keys.
	Size() int
}

// tracker implements Deduper with a mutex-guarded set. Ingestion batches are
// bounded (one CSV file), so no eviction is needed; a fresh tracker is
// created per batch.
type tracker struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// New creates an empty Deduper for a single ingestion batch.
func New() Deduper {
	return &tracker{seen: make(map[string]struct{})}
}

func (t *tracker) SeenAndRecord(_ context.Context, key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.seen[key]; ok {
		return true
	}
	t.seen[key] = struct{}{}
	return false
}

func (t *tracker) Unrecord(_ context.Context, key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.seen, key)
}

func (t *tracker) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}
