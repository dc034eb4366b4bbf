// Package ingest builds the vector collection from the data folder:
// load, chunk, embed, upsert.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/vectordb"
	"go.uber.org/zap"
)

var (
	// ErrNoDocuments means the ingest run was handed nothing to index.
	ErrNoDocuments = errors.New("no documents to ingest")
	// ErrNoChunks means every document was empty after normalization.
	ErrNoChunks = errors.New("no chunks produced from documents")
)

// Pipeline turns documents into vector index entries: chunk, embed, upsert.
type Pipeline struct {
	chunker  *Chunker
	embedder embedding.Embedder
	store    vectordb.Store
	logger   *zap.Logger
}

func NewPipeline(chunker *Chunker, embedder embedding.Embedder, store vectordb.Store, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		logger:   logger,
	}
}

// Ingest runs the full pipeline over docs and returns the number of chunks
// indexed. Empty input fails fast so a misconfigured data folder cannot
// silently wipe or shadow an existing index. When the store is already
// populated and force is false the upsert is a no-op and the chunk count
// still reflects this run's chunking.
func (p *Pipeline) Ingest(ctx context.Context, docs []models.Document, force bool) (int, error) {
	if len(docs) == 0 {
		return 0, ErrNoDocuments
	}
	start := time.Now()

	chunks := p.chunker.Chunk(docs)
	if len(chunks) == 0 {
		return 0, ErrNoChunks
	}
	p.logger.Info("chunked documents",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", len(chunks)))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	entries := make([]models.IndexEntry, len(chunks))
	for i, c := range chunks {
		entries[i] = models.IndexEntry{
			ID:     c.ID,
			Vector: vectors[i],
			Text:   c.Text,
			Source: c.Source,
		}
	}
	if err := p.store.Upsert(ctx, entries, force); err != nil {
		return 0, fmt.Errorf("upsert entries: %w", err)
	}

	p.logger.Info("ingest complete",
		zap.Int("chunks", len(chunks)),
		zap.Bool("force", force),
		zap.Duration("elapsed", time.Since(start)))
	return len(chunks), nil
}
