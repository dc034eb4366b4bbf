package vectordb

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hyperjump/kotae/internal/models"
)

// LocalStore is an in-memory collection with brute-force inner product search
// and binary file persistence. Suitable for tests and single-node deployments
// without a Qdrant instance.
type LocalStore struct {
	path    string
	embed   EmbedFunc
	entries []models.IndexEntry
	opened  bool
	mu      sync.RWMutex
}

// NewLocalStore creates a local store persisted at path (empty path disables
// persistence). embed is used to embed query text.
func NewLocalStore(path string, embed EmbedFunc) *LocalStore {
	return &LocalStore{path: path, embed: embed}
}

// Open loads persisted entries from disk if present. Idempotent.
func (s *LocalStore) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opened {
		return nil
	}
	if err := s.loadLocked(); err != nil {
		return fmt.Errorf("open local collection: %w", err)
	}
	s.opened = true
	return nil
}

// Count returns the number of stored entries.
func (s *LocalStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.opened {
		return 0, ErrNotReady
	}
	return len(s.entries), nil
}

// Upsert inserts entries into an empty collection, or replaces the whole
// collection when forceRecreate is set. A populated collection without force
// is left untouched.
func (s *LocalStore) Upsert(ctx context.Context, entries []models.IndexEntry, forceRecreate bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.opened {
		return ErrNotReady
	}
	if len(s.entries) > 0 && !forceRecreate {
		return nil
	}
	replacement := make([]models.IndexEntry, len(entries))
	for i, e := range entries {
		vec := make([]float32, len(e.Vector))
		copy(vec, e.Vector)
		replacement[i] = models.IndexEntry{ID: e.ID, Vector: vec, Text: e.Text, Source: e.Source}
	}
	s.entries = replacement
	if err := s.saveLocked(); err != nil {
		return fmt.Errorf("persist local collection: %w", err)
	}
	return nil
}

// Query embeds text and returns up to k entries by inner product
// (cosine similarity for normalized vectors), best first.
func (s *LocalStore) Query(ctx context.Context, text string, k int) ([]models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.opened {
		return nil, ErrNotReady
	}
	if k <= 0 || len(s.entries) == 0 {
		return nil, nil
	}
	query, err := s.embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(s.entries))
	for i, e := range s.entries {
		scores[i] = scored{idx: i, score: dot(query, e.Vector)}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if k > len(scores) {
		k = len(scores)
	}
	out := make([]models.Candidate, k)
	for i := 0; i < k; i++ {
		e := s.entries[scores[i].idx]
		out[i] = models.Candidate{
			Text:          e.Text,
			Source:        e.Source,
			SemanticScore: clamp01(scores[i].score),
			Scored:        true,
		}
	}
	return out, nil
}

// Close persists the collection if a path is configured.
func (s *LocalStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.opened {
		return nil
	}
	return s.saveLocked()
}

func dot(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var sum float64
	for i := range a {
		sum += float64(a[i] * b[i])
	}
	return sum
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

// saveLocked writes entries to s.path. Format: count (4), then per entry:
// idLen (4), id, srcLen (4), source, textLen (4), text, vecLen (4), vector floats.
func (s *LocalStore) saveLocked() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create collection dir: %w", err)
	}
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create collection file: %w", err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, uint32(len(s.entries))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for _, e := range s.entries {
		for _, str := range []string{e.ID, e.Source, e.Text} {
			if err := binary.Write(f, binary.LittleEndian, uint32(len(str))); err != nil {
				return fmt.Errorf("write length: %w", err)
			}
			if _, err := f.WriteString(str); err != nil {
				return fmt.Errorf("write string: %w", err)
			}
		}
		if err := binary.Write(f, binary.LittleEndian, uint32(len(e.Vector))); err != nil {
			return fmt.Errorf("write vector length: %w", err)
		}
		if err := binary.Write(f, binary.LittleEndian, e.Vector); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// loadLocked reads entries from s.path. A missing file leaves the collection empty.
func (s *LocalStore) loadLocked() error {
	if s.path == "" {
		return nil
	}
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open collection file: %w", err)
	}
	defer f.Close()
	var n uint32
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read count: %w", err)
	}
	entries := make([]models.IndexEntry, 0, n)
	for i := uint32(0); i < n; i++ {
		var e models.IndexEntry
		strs := make([]string, 3)
		for j := range strs {
			var l uint32
			if err := binary.Read(f, binary.LittleEndian, &l); err != nil {
				return fmt.Errorf("read length: %w", err)
			}
			buf := make([]byte, l)
			if _, err := io.ReadFull(f, buf); err != nil {
				return fmt.Errorf("read string: %w", err)
			}
			strs[j] = string(buf)
		}
		e.ID, e.Source, e.Text = strs[0], strs[1], strs[2]
		var vl uint32
		if err := binary.Read(f, binary.LittleEndian, &vl); err != nil {
			return fmt.Errorf("read vector length: %w", err)
		}
		e.Vector = make([]float32, vl)
		if err := binary.Read(f, binary.LittleEndian, e.Vector); err != nil {
			return fmt.Errorf("read vector: %w", err)
		}
		entries = append(entries, e)
	}
	s.entries = entries
	return nil
}
