// Package models defines core data structures for documents, chunks, and retrieval candidates.
package models

// Document is raw extracted text from one source file. Documents are consumed
// entirely during ingestion and never persisted as-is.
type Document struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// Chunk is a bounded contiguous segment of a normalized document, sized for
// embedding and indexing. IDs are sequential within one ingestion run
// (chunk_0, chunk_1, ...) and are not stable across runs.
type Chunk struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Source string `json:"source"`
}

// IndexEntry is one stored tuple in the vector collection.
type IndexEntry struct {
	ID     string    `json:"id"`
	Vector []float32 `json:"vector"`
	Text   string    `json:"text"`
	Source string    `json:"source"`
}

// Candidate is a transient retrieval hit with its relevance scores.
// SemanticScore is cosine similarity in [0,1]; Scored reports whether the
// vector store already computed it (the ranker re-embeds otherwise).
type Candidate struct {
	Text          string  `json:"text"`
	Source        string  `json:"source"`
	SemanticScore float64 `json:"semantic_score"`
	KeywordScore  float64 `json:"keyword_score"`
	CombinedScore float64 `json:"combined_score"`
	Scored        bool    `json:"-"`
}
