package ingest

import (
	"fmt"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
	"go.uber.org/zap"
)

// separators are tried in order. The empty string is the last resort and
// splits into individual characters so no piece can exceed the chunk size.
var separators = []string{"\n\n\n", "\n\n", "\n", " ", ""}

// Chunker splits documents into overlapping chunks along a separator
// hierarchy, preferring paragraph boundaries over sentence and word ones.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
	logger       *zap.Logger
}

func NewChunker(chunkSize, chunkOverlap int, logger *zap.Logger) *Chunker {
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		logger:       logger,
	}
}

// Chunk splits every document and assigns sequential chunk IDs across the
// whole batch. Documents that are empty after whitespace normalization are
// skipped with a log entry.
func (c *Chunker) Chunk(docs []models.Document) []models.Chunk {
	var chunks []models.Chunk
	n := 0
	for _, doc := range docs {
		text := Normalize(doc.Text)
		if text == "" {
			c.logger.Warn("skipping empty document", zap.String("source", doc.Source))
			continue
		}
		for _, piece := range c.split(text, separators) {
			chunks = append(chunks, models.Chunk{
				ID:     fmt.Sprintf("chunk_%d", n),
				Text:   piece,
				Source: doc.Source,
			})
			n++
		}
	}
	return chunks
}

// Normalize collapses all runs of whitespace to single spaces and trims the
// ends. Extraction output is often riddled with stray newlines and tabs.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// split recursively divides text at the first applicable separator, then
// merges the pieces back up to chunkSize with chunkOverlap carryover.
func (c *Chunker) split(text string, seps []string) []string {
	sep := seps[len(seps)-1]
	var rest []string
	for i, s := range seps {
		if s == "" || strings.Contains(text, s) {
			sep = s
			rest = seps[i+1:]
			break
		}
	}

	var merged []string
	var pending []string
	for _, piece := range splitOn(text, sep) {
		if piece == "" {
			continue
		}
		if len(piece) <= c.chunkSize {
			pending = append(pending, piece)
			continue
		}
		// Oversized piece: flush what we have, then recurse with the
		// remaining finer separators.
		merged = append(merged, c.merge(pending, sep)...)
		pending = nil
		if len(rest) > 0 {
			merged = append(merged, c.split(piece, rest)...)
		} else {
			merged = append(merged, piece)
		}
	}
	merged = append(merged, c.merge(pending, sep)...)
	return merged
}

// merge joins consecutive pieces until adding one more would exceed
// chunkSize, then emits the chunk and keeps the tail pieces whose combined
// length fits the overlap as the start of the next chunk.
func (c *Chunker) merge(pieces []string, sep string) []string {
	if len(pieces) == 0 {
		return nil
	}
	sepLen := len(sep)
	var out []string
	var window []string
	total := 0

	// total tracks the joined length of window, separators included.
	sepIf := func(cond bool) int {
		if cond {
			return sepLen
		}
		return 0
	}

	for _, piece := range pieces {
		pieceLen := len(piece)
		if total+pieceLen+sepIf(len(window) > 0) > c.chunkSize && total > 0 {
			joined := strings.TrimSpace(strings.Join(window, sep))
			if joined != "" {
				out = append(out, joined)
			}
			for total > c.chunkOverlap ||
				(total+pieceLen+sepIf(len(window) > 0) > c.chunkSize && total > 0) {
				total -= len(window[0]) + sepIf(len(window) > 1)
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += pieceLen + sepIf(len(window) > 1)
	}
	if joined := strings.TrimSpace(strings.Join(window, sep)); joined != "" {
		out = append(out, joined)
	}
	return out
}

func splitOn(text, sep string) []string {
	if sep == "" {
		return strings.Split(text, "")
	}
	return strings.Split(text, sep)
}
