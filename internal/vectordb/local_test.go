package vectordb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/models"
)

func newLocalForTest(t *testing.T) (*LocalStore, *embedding.MockEmbedder) {
	t.Helper()
	emb := embedding.NewMockEmbedder(8)
	path := filepath.Join(t.TempDir(), "index.bin")
	store := NewLocalStore(path, emb.Embed)
	if err := store.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return store, emb
}

func entriesForTest(t *testing.T, emb *embedding.MockEmbedder, texts map[string]string) []models.IndexEntry {
	t.Helper()
	entries := make([]models.IndexEntry, 0, len(texts))
	i := 0
	for text, source := range texts {
		vec, err := emb.Embed(context.Background(), text)
		if err != nil {
			t.Fatalf("Embed: %v", err)
		}
		entries = append(entries, models.IndexEntry{
			ID:     "chunk_" + string(rune('0'+i)),
			Vector: vec,
			Text:   text,
			Source: source,
		})
		i++
	}
	return entries
}

func TestLocalStore_NotReady(t *testing.T) {
	emb := embedding.NewMockEmbedder(8)
	store := NewLocalStore(filepath.Join(t.TempDir(), "index.bin"), emb.Embed)

	if _, err := store.Count(context.Background()); err != ErrNotReady {
		t.Errorf("Count before Open: got %v, want ErrNotReady", err)
	}
	if _, err := store.Query(context.Background(), "query", 3); err != ErrNotReady {
		t.Errorf("Query before Open: got %v, want ErrNotReady", err)
	}
	if err := store.Upsert(context.Background(), nil, false); err != ErrNotReady {
		t.Errorf("Upsert before Open: got %v, want ErrNotReady", err)
	}
}

func TestLocalStore_UpsertAndQuery(t *testing.T) {
	store, emb := newLocalForTest(t)
	defer store.Close()
	ctx := context.Background()

	entries := entriesForTest(t, emb, map[string]string{
		"the quick brown fox": "animals.txt",
		"stock market report": "finance.txt",
	})
	if err := store.Upsert(ctx, entries, false); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Fatalf("Count = %d, want 2", count)
	}

	got, err := store.Query(ctx, "the quick brown fox", 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Query returned %d candidates, want 1", len(got))
	}
	if got[0].Text != "the quick brown fox" {
		t.Errorf("top candidate = %q, want the exact match", got[0].Text)
	}
	if !got[0].Scored {
		t.Error("candidate should carry a store-computed score")
	}
	if got[0].SemanticScore < 0.99 {
		t.Errorf("exact match similarity = %f, want ~1", got[0].SemanticScore)
	}
}

func TestLocalStore_UpsertSkipsWhenPopulated(t *testing.T) {
	store, emb := newLocalForTest(t)
	defer store.Close()
	ctx := context.Background()

	first := entriesForTest(t, emb, map[string]string{"original": "a.txt"})
	if err := store.Upsert(ctx, first, false); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	second := entriesForTest(t, emb, map[string]string{"replacement": "b.txt"})
	if err := store.Upsert(ctx, second, false); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	got, err := store.Query(ctx, "original", 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 1 || got[0].Text != "original" {
		t.Errorf("populated store should keep original entries, got %+v", got)
	}
}

func TestLocalStore_ForceRecreateReplaces(t *testing.T) {
	store, emb := newLocalForTest(t)
	defer store.Close()
	ctx := context.Background()

	first := entriesForTest(t, emb, map[string]string{"original": "a.txt"})
	if err := store.Upsert(ctx, first, false); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	second := entriesForTest(t, emb, map[string]string{"replacement": "b.txt"})
	if err := store.Upsert(ctx, second, true); err != nil {
		t.Fatalf("force Upsert: %v", err)
	}

	got, err := store.Query(ctx, "replacement", 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 1 || got[0].Text != "replacement" {
		t.Errorf("force recreate should replace entries, got %+v", got)
	}
}

func TestLocalStore_QueryEmptyIndex(t *testing.T) {
	store, _ := newLocalForTest(t)
	defer store.Close()

	got, err := store.Query(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("Query on empty index: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("empty index returned %d candidates", len(got))
	}
}

func TestLocalStore_Persistence(t *testing.T) {
	emb := embedding.NewMockEmbedder(8)
	path := filepath.Join(t.TempDir(), "index.bin")
	ctx := context.Background()

	store := NewLocalStore(path, emb.Embed)
	if err := store.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	entries := entriesForTest(t, emb, map[string]string{"persisted text": "file.txt"})
	if err := store.Upsert(ctx, entries, false); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := NewLocalStore(path, emb.Embed)
	if err := reopened.Open(ctx); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	count, err := reopened.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("reopened Count = %d, want 1", count)
	}
	got, err := reopened.Query(ctx, "persisted text", 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 1 || got[0].Source != "file.txt" {
		t.Errorf("reopened store lost entry data: %+v", got)
	}
}
