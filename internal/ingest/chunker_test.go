package ingest

import (
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
	"go.uber.org/zap"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " ")
}

func TestChunker_ShortDocumentSingleChunk(t *testing.T) {
	c := NewChunker(1000, 200, zap.NewNop())
	chunks := c.Chunk([]models.Document{{Text: "a short document", Source: "short.txt"}})

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Text != "a short document" {
		t.Errorf("chunk text = %q", chunks[0].Text)
	}
	if chunks[0].ID != "chunk_0" {
		t.Errorf("chunk ID = %q, want chunk_0", chunks[0].ID)
	}
	if chunks[0].Source != "short.txt" {
		t.Errorf("chunk source = %q", chunks[0].Source)
	}
}

func TestChunker_LongDocumentSplitsWithOverlap(t *testing.T) {
	c := NewChunker(1000, 200, zap.NewNop())
	// 480 five-char "word " units, 2400 characters once normalized.
	long := words(480)
	short := "a short doc"
	chunks := c.Chunk([]models.Document{
		{Text: long, Source: "long.txt"},
		{Text: short, Source: "short.txt"},
	})

	var longChunks, shortChunks []models.Chunk
	for _, ch := range chunks {
		if ch.Source == "long.txt" {
			longChunks = append(longChunks, ch)
		} else {
			shortChunks = append(shortChunks, ch)
		}
	}
	if len(longChunks) < 3 {
		t.Fatalf("long document produced %d chunks, want >= 3", len(longChunks))
	}
	if len(shortChunks) != 1 {
		t.Fatalf("short document produced %d chunks, want 1", len(shortChunks))
	}
	for _, ch := range chunks {
		if len(ch.Text) > 1000 {
			t.Errorf("chunk %s exceeds size: %d chars", ch.ID, len(ch.Text))
		}
	}
	// IDs run sequentially across the whole batch.
	for i, ch := range chunks {
		want := "chunk_" + string(rune('0'+i))
		if i < 10 && ch.ID != want {
			t.Errorf("chunk %d ID = %q, want %q", i, ch.ID, want)
		}
	}
}

func TestChunker_OverlapCarriesText(t *testing.T) {
	c := NewChunker(100, 40, zap.NewNop())
	// Distinct words so overlapping text is identifiable.
	parts := make([]string, 40)
	for i := range parts {
		parts[i] = "w" + string(rune('a'+i%26)) + string(rune('a'+i/26))
	}
	chunks := c.Chunk([]models.Document{{Text: strings.Join(parts, " "), Source: "d.txt"}})
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prevWords := strings.Fields(chunks[i-1].Text)
		firstWord := strings.Fields(chunks[i].Text)[0]
		found := false
		for _, w := range prevWords {
			if w == firstWord {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("chunk %d does not start inside chunk %d's tail", i, i-1)
		}
	}
}

func TestChunker_NoDataLoss(t *testing.T) {
	c := NewChunker(120, 30, zap.NewNop())
	parts := make([]string, 60)
	for i := range parts {
		parts[i] = "token" + string(rune('a'+i%26))
	}
	text := strings.Join(parts, " ")
	chunks := c.Chunk([]models.Document{{Text: text, Source: "d.txt"}})

	// Every word of the input appears in at least one chunk.
	joined := " "
	for _, ch := range chunks {
		joined += ch.Text + " "
	}
	for _, w := range parts {
		if !strings.Contains(joined, " "+w+" ") {
			t.Errorf("word %q missing from all chunks", w)
		}
	}
}

func TestChunker_PrefersParagraphBoundaries(t *testing.T) {
	c := NewChunker(1000, 100, zap.NewNop())
	// Normalization collapses newlines first, so paragraph splitting only
	// fires on text that still carries them. Chunk normalizes; exercise
	// split directly.
	text := strings.Repeat("x", 600) + "\n\n" + strings.Repeat("y", 600)
	pieces := c.split(text, separators)
	if len(pieces) != 2 {
		t.Fatalf("got %d pieces, want 2", len(pieces))
	}
	if strings.ContainsRune(pieces[0], 'y') || strings.ContainsRune(pieces[1], 'x') {
		t.Error("paragraphs were mixed across chunks")
	}
}

func TestChunker_SkipsEmptyDocuments(t *testing.T) {
	c := NewChunker(1000, 200, zap.NewNop())
	chunks := c.Chunk([]models.Document{
		{Text: "   \n\t  ", Source: "blank.txt"},
		{Text: "real content", Source: "real.txt"},
	})
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Source != "real.txt" || chunks[0].ID != "chunk_0" {
		t.Errorf("unexpected chunk: %+v", chunks[0])
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize("  hello\n\nworld\t  again ")
	if got != "hello world again" {
		t.Errorf("Normalize = %q", got)
	}
	if Normalize("") != "" {
		t.Error("Normalize of empty string should be empty")
	}
}

func TestChunker_WordLongerThanChunkSize(t *testing.T) {
	c := NewChunker(10, 2, zap.NewNop())
	chunks := c.Chunk([]models.Document{{Text: strings.Repeat("a", 35), Source: "d.txt"}})
	if len(chunks) == 0 {
		t.Fatal("no chunks produced")
	}
	for _, ch := range chunks {
		if len(ch.Text) > 10 {
			t.Errorf("chunk %q exceeds size", ch.Text)
		}
	}
}
