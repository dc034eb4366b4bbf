package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/ranking"
	"github.com/hyperjump/kotae/internal/vectordb"
	"github.com/hyperjump/kotae/pkg/utils"
	"go.uber.org/zap"
)

// Retriever answers a query with ranked context blocks from the vector store.
type Retriever struct {
	store    vectordb.Store
	ranker   *ranking.Ranker
	nResults int
	timeout  time.Duration
	logger   *zap.Logger
}

func NewRetriever(store vectordb.Store, ranker *ranking.Ranker, nResults int, timeout time.Duration, logger *zap.Logger) *Retriever {
	return &Retriever{
		store:    store,
		ranker:   ranker,
		nResults: nResults,
		timeout:  timeout,
		logger:   logger,
	}
}

// Retrieve returns up to nResults formatted context blocks for the query,
// ordered best match first. Retrieval failures degrade to no context rather
// than erroring, so the caller can still answer from general knowledge; only
// the log records what went wrong.
func (r *Retriever) Retrieve(ctx context.Context, query string) []string {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	candidates, err := r.store.Query(ctx, query, r.nResults)
	if err != nil {
		r.logger.Warn("vector search failed, answering without context",
			zap.String("query", utils.Truncate(query, 120)), zap.Error(err))
		return nil
	}
	if len(candidates) == 0 {
		r.logger.Info("no candidates for query", zap.String("query", utils.Truncate(query, 120)))
		return nil
	}

	ranked := r.ranker.Rank(ctx, query, candidates)
	blocks := make([]string, len(ranked))
	for i, c := range ranked {
		blocks[i] = FormatBlock(c)
	}
	r.logger.Debug("retrieved context",
		zap.String("query", utils.Truncate(query, 120)),
		zap.Int("blocks", len(blocks)),
		zap.Float64("top_score", ranked[0].CombinedScore))
	return blocks
}

// FormatBlock renders a candidate as a source-attributed context block.
func FormatBlock(c models.Candidate) string {
	return fmt.Sprintf("Source: %s\nContent: %s", c.Source, c.Text)
}
