package vectordb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/hyperjump/kotae/internal/models"
	"go.uber.org/zap"
)

const (
	qdrantTimeout     = 15 * time.Second
	qdrantUpsertBatch = 100
)

// QdrantStore is a minimal REST client to a Qdrant collection with cosine
// distance. Entry text and source travel in the point payload.
type QdrantStore struct {
	url        string
	apiKey     string
	collection string
	dimensions int
	embed      EmbedFunc
	client     *http.Client
	logger     *zap.Logger
	opened     bool
	mu         sync.RWMutex
}

// QdrantConfig configures a QdrantStore. The API key is read from the
// environment variable named in APIKeyEnv (empty means no auth).
type QdrantConfig struct {
	URL        string
	APIKeyEnv  string
	Collection string
	Dimensions int
}

// NewQdrantStore creates a Qdrant-backed store. embed is used for query text.
func NewQdrantStore(cfg QdrantConfig, embed EmbedFunc, logger *zap.Logger) *QdrantStore {
	return &QdrantStore{
		url:        cfg.URL,
		apiKey:     os.Getenv(cfg.APIKeyEnv),
		collection: cfg.Collection,
		dimensions: cfg.Dimensions,
		embed:      embed,
		client:     &http.Client{Timeout: qdrantTimeout},
		logger:     logger,
	}
}

// Open creates the collection with cosine distance if it does not exist. Idempotent.
func (s *QdrantStore) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opened {
		return nil
	}
	exists, err := s.collectionExists(ctx)
	if err != nil {
		return fmt.Errorf("check collection %q: %w", s.collection, err)
	}
	if !exists {
		if err := s.createCollection(ctx); err != nil {
			return fmt.Errorf("create collection %q: %w", s.collection, err)
		}
		s.logger.Info("created vector collection", zap.String("collection", s.collection))
	}
	s.opened = true
	return nil
}

// Count returns the exact number of points in the collection.
func (s *QdrantStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.opened {
		return 0, ErrNotReady
	}
	return s.countLocked(ctx)
}

func (s *QdrantStore) countLocked(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/count", s.url, s.collection)
	if err := s.doJSON(ctx, http.MethodPost, url, map[string]any{"exact": true}, &resp); err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

// Upsert bulk-inserts entries into an empty collection. When the collection is
// already populated it is a no-op unless forceRecreate is set, in which case
// the collection is dropped and recreated first. This is the only update path.
func (s *QdrantStore) Upsert(ctx context.Context, entries []models.IndexEntry, forceRecreate bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.opened {
		return ErrNotReady
	}
	existing, err := s.countLocked(ctx)
	if err != nil {
		return fmt.Errorf("count collection %q: %w", s.collection, err)
	}
	if existing > 0 {
		if !forceRecreate {
			s.logger.Info("collection already populated, skipping ingest",
				zap.String("collection", s.collection), zap.Int("entries", existing))
			return nil
		}
		s.logger.Info("recreating collection",
			zap.String("collection", s.collection), zap.Int("old_entries", existing))
		url := fmt.Sprintf("%s/collections/%s", s.url, s.collection)
		if err := s.doJSON(ctx, http.MethodDelete, url, nil, nil); err != nil {
			return fmt.Errorf("drop collection %q: %w", s.collection, err)
		}
		if err := s.createCollection(ctx); err != nil {
			return fmt.Errorf("recreate collection %q: %w", s.collection, err)
		}
	}
	for start := 0; start < len(entries); start += qdrantUpsertBatch {
		end := start + qdrantUpsertBatch
		if end > len(entries) {
			end = len(entries)
		}
		if err := s.insertBatch(ctx, entries[start:end], start); err != nil {
			return fmt.Errorf("insert points %d-%d: %w", start, end, err)
		}
	}
	s.logger.Info("indexed entries", zap.String("collection", s.collection), zap.Int("entries", len(entries)))
	return nil
}

// Query embeds text and returns up to k nearest points by cosine similarity.
func (s *QdrantStore) Query(ctx context.Context, text string, k int) ([]models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.opened {
		return nil, ErrNotReady
	}
	if k <= 0 {
		return nil, nil
	}
	vector, err := s.embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection)
	if err := s.doJSON(ctx, http.MethodPost, url, req, &resp); err != nil {
		return nil, fmt.Errorf("search collection %q: %w", s.collection, err)
	}
	out := make([]models.Candidate, 0, len(resp.Result))
	for _, r := range resp.Result {
		c := models.Candidate{SemanticScore: clamp01(r.Score), Scored: true}
		if v, ok := r.Payload["text"].(string); ok {
			c.Text = v
		}
		if v, ok := r.Payload["source"].(string); ok {
			c.Source = v
		}
		if c.Text == "" {
			// Malformed point; skip rather than abort the batch.
			s.logger.Warn("skipping point without text payload", zap.String("collection", s.collection))
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Close is a no-op; Qdrant holds the data.
func (s *QdrantStore) Close() error {
	return nil
}

func (s *QdrantStore) collectionExists(ctx context.Context) (bool, error) {
	url := fmt.Sprintf("%s/collections/%s", s.url, s.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	s.setHeaders(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status %s", resp.Status)
	}
}

func (s *QdrantStore) createCollection(ctx context.Context) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     s.dimensions,
			"distance": "Cosine",
		},
	}
	url := fmt.Sprintf("%s/collections/%s", s.url, s.collection)
	return s.doJSON(ctx, http.MethodPut, url, body, nil)
}

func (s *QdrantStore) insertBatch(ctx context.Context, entries []models.IndexEntry, offset int) error {
	points := make([]map[string]any, len(entries))
	for i, e := range entries {
		points[i] = map[string]any{
			// Qdrant point IDs must be integers or UUIDs; the run-scoped
			// chunk ID travels in the payload instead.
			"id":     offset + i,
			"vector": e.Vector,
			"payload": map[string]any{
				"chunk_id": e.ID,
				"text":     e.Text,
				"source":   e.Source,
			},
		}
	}
	url := fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection)
	return s.doJSON(ctx, http.MethodPut, url, map[string]any{"points": points}, nil)
}

func (s *QdrantStore) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
}

func (s *QdrantStore) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	s.setHeaders(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
