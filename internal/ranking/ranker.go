package ranking

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/models"
	"go.uber.org/zap"
)

// Default hybrid weights. Semantic similarity dominates; the keyword signal
// breaks ties between semantically close candidates.
const (
	DefaultSemanticWeight = 0.7
	DefaultKeywordWeight  = 0.3

	// keywordBoost amplifies partial keyword coverage so that matching most
	// of a short query saturates the signal.
	keywordBoost = 1.5
)

var wordPattern = regexp.MustCompile(`\w+`)

// Ranker reorders vector search candidates by a weighted blend of semantic
// similarity and keyword coverage.
type Ranker struct {
	embedder       embedding.Embedder
	semanticWeight float64
	keywordWeight  float64
	logger         *zap.Logger
}

func NewRanker(embedder embedding.Embedder, logger *zap.Logger) *Ranker {
	return &Ranker{
		embedder:       embedder,
		semanticWeight: DefaultSemanticWeight,
		keywordWeight:  DefaultKeywordWeight,
		logger:         logger,
	}
}

// Rank scores candidates against the query and returns them ordered by
// combined score, best first. The sort is stable so equal scores keep the
// store's original order. Candidates that already carry a store-computed
// similarity are not re-embedded; for the rest the embedder is the fallback,
// and a per-candidate embedding failure demotes that candidate to zero
// semantic score instead of failing the whole ranking.
func (r *Ranker) Rank(ctx context.Context, query string, candidates []models.Candidate) []models.Candidate {
	queryTokens := tokenize(query)
	var queryVec []float32

	ranked := make([]models.Candidate, len(candidates))
	for i, c := range candidates {
		if !c.Scored {
			if queryVec == nil {
				vec, err := r.embedder.Embed(ctx, query)
				if err != nil {
					r.logger.Warn("failed to embed query for ranking", zap.Error(err))
					queryVec = []float32{}
				} else {
					queryVec = vec
				}
			}
			c.SemanticScore = r.semanticFallback(ctx, queryVec, c.Text)
			c.Scored = true
		}
		c.KeywordScore = KeywordScore(queryTokens, c.Text)
		c.CombinedScore = r.semanticWeight*c.SemanticScore + r.keywordWeight*c.KeywordScore
		ranked[i] = c
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CombinedScore > ranked[j].CombinedScore
	})
	return ranked
}

func (r *Ranker) semanticFallback(ctx context.Context, queryVec []float32, text string) float64 {
	if len(queryVec) == 0 {
		return 0
	}
	vec, err := r.embedder.Embed(ctx, text)
	if err != nil {
		r.logger.Warn("failed to embed candidate, scoring zero", zap.Error(err))
		return 0
	}
	var score float64
	for i := range queryVec {
		if i < len(vec) {
			score += float64(queryVec[i]) * float64(vec[i])
		}
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// KeywordScore measures what fraction of the distinct query tokens appear in
// text, boosted and capped at 1. Tokens are lowercase word runs; coverage is
// over token sets, so repeated words count once.
func KeywordScore(queryTokens []string, text string) float64 {
	querySet := tokenSet(queryTokens)
	if len(querySet) == 0 {
		return 0
	}
	textSet := tokenSet(tokenize(text))
	matched := 0
	for tok := range querySet {
		if _, ok := textSet[tok]; ok {
			matched++
		}
	}
	score := float64(matched) / float64(len(querySet)) * keywordBoost
	if score > 1 {
		return 1
	}
	return score
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

func tokenize(s string) []string {
	return wordPattern.FindAllString(strings.ToLower(s), -1)
}
