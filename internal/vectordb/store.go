// Package vectordb provides the persistent vector collection: nearest-neighbor
// query plus bulk upsert with drop-and-recreate semantics.
package vectordb

import (
	"context"
	"errors"

	"github.com/hyperjump/kotae/internal/models"
)

// ErrNotReady is returned by every operation after the collection failed to
// initialize. Callers treat it as startup-fatal, not per-call recoverable.
var ErrNotReady = errors.New("vector collection not initialized")

// EmbedFunc maps text to a unit-length vector. The store owns one, bound at
// construction, so Query can embed the query text internally.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// Store is a single named collection of (id, vector, text, source) entries.
//
// Upsert policy: on an empty collection all entries are inserted; on a
// populated collection nothing happens unless forceRecreate is set, in which
// case the collection is dropped, recreated, and bulk-inserted. There is no
// partial update path, so stale and fresh chunks for the same source never mix.
type Store interface {
	// Open creates the collection if it does not exist. Idempotent.
	Open(ctx context.Context) error
	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)
	// Upsert applies the bulk insert policy described above.
	Upsert(ctx context.Context, entries []models.IndexEntry, forceRecreate bool) error
	// Query embeds text and returns up to k nearest entries, best first.
	// Each candidate carries the store's cosine score (Scored = true).
	Query(ctx context.Context, text string, k int) ([]models.Candidate, error)
	Close() error
}
