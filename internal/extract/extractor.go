// Package extract turns document files of assorted formats into plain text.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extractor extracts plain text from document files by extension.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its text content. Structured
// formats (PDF, OOXML, OpenDocument, JSON, CSV) are flattened to searchable
// text; anything unrecognized is treated as plain text.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, strings.ToLower(filepath.Ext(path)))
}

// ExtractBytes extracts text from content based on the given extension.
// ext includes the leading dot (e.g. ".pdf").
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch ext {
	case ".json":
		return extractJSON(content)
	case ".jsonl":
		return extractJSONL(content)
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".odt":
		return extractOpenDocument(content, "ODT")
	case ".xlsx":
		return extractExcel(content)
	case ".pptx":
		return extractPPTX(content)
	case ".odp":
		return extractODP(content)
	case ".ods":
		return extractODS(content)
	case ".csv":
		return extractCSV(content)
	default:
		return extractPlain(content)
	}
}

// Supported reports whether ext names a format this extractor understands.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".json", ".jsonl", ".pdf", ".docx", ".odt", ".xlsx",
		".pptx", ".odp", ".ods", ".csv", ".txt", ".md", ".rst":
		return true
	}
	return false
}
