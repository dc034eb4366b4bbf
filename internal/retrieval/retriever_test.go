package retrieval

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/ranking"
	"github.com/hyperjump/kotae/internal/vectordb"
	"go.uber.org/zap"
)

type failingStore struct{}

func (failingStore) Open(context.Context) error         { return nil }
func (failingStore) Count(context.Context) (int, error) { return 0, nil }
func (failingStore) Upsert(context.Context, []models.IndexEntry, bool) error {
	return nil
}
func (failingStore) Query(context.Context, string, int) ([]models.Candidate, error) {
	return nil, errors.New("backend unreachable")
}
func (failingStore) Close() error { return nil }

func newRetrieverForTest(t *testing.T, texts map[string]string) *Retriever {
	t.Helper()
	logger := zap.NewNop()
	emb := embedding.NewMockEmbedder(8)
	store := vectordb.NewLocalStore(filepath.Join(t.TempDir(), "index.bin"), emb.Embed)
	ctx := context.Background()
	if err := store.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if len(texts) > 0 {
		var entries []models.IndexEntry
		i := 0
		for text, source := range texts {
			vec, err := emb.Embed(ctx, text)
			if err != nil {
				t.Fatalf("Embed: %v", err)
			}
			entries = append(entries, models.IndexEntry{
				ID: "chunk_" + string(rune('0'+i)), Vector: vec, Text: text, Source: source,
			})
			i++
		}
		if err := store.Upsert(ctx, entries, false); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}
	ranker := ranking.NewRanker(emb, logger)
	return NewRetriever(store, ranker, 5, 5*time.Second, logger)
}

func TestRetrieve_FormatsBlocks(t *testing.T) {
	r := newRetrieverForTest(t, map[string]string{
		"we provide cybersecurity services": "services.txt",
	})
	blocks := r.Retrieve(context.Background(), "cybersecurity services")

	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	want := "Source: services.txt\nContent: we provide cybersecurity services"
	if blocks[0] != want {
		t.Errorf("block = %q, want %q", blocks[0], want)
	}
}

func TestRetrieve_RanksKeywordMatchFirst(t *testing.T) {
	r := newRetrieverForTest(t, map[string]string{
		"we were founded in 2003":                      "about.txt",
		"we provide cybersecurity services to clients": "services.txt",
	})
	blocks := r.Retrieve(context.Background(), "cybersecurity services")

	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if !strings.HasPrefix(blocks[0], "Source: services.txt") {
		t.Errorf("top block = %q, want the cybersecurity document", blocks[0])
	}
}

func TestRetrieve_EmptyIndex(t *testing.T) {
	r := newRetrieverForTest(t, nil)
	blocks := r.Retrieve(context.Background(), "anything at all")
	if len(blocks) != 0 {
		t.Errorf("empty index returned %d blocks", len(blocks))
	}
}

func TestRetrieve_StoreErrorDegrades(t *testing.T) {
	logger := zap.NewNop()
	emb := embedding.NewMockEmbedder(8)
	ranker := ranking.NewRanker(emb, logger)
	r := NewRetriever(failingStore{}, ranker, 5, time.Second, logger)

	blocks := r.Retrieve(context.Background(), "query")
	if blocks != nil {
		t.Errorf("store error should yield no context, got %v", blocks)
	}
}
