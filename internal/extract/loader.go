package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
	"go.uber.org/zap"
)

// extPriority orders extensions so curated knowledge files (JSON exports)
// are loaded before free-form documents. Unlisted supported extensions come
// last, alphabetically by file name.
var extPriority = map[string]int{
	".json":  0,
	".jsonl": 1,
	".pptx":  2,
	".pdf":   3,
	".csv":   4,
	".txt":   5,
	".md":    6,
}

// Loader reads every supported file in a folder into documents.
type Loader struct {
	extractor *Extractor
	logger    *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{extractor: NewExtractor(), logger: logger}
}

// LoadFolder extracts all supported files directly under dir, in priority
// order. A file that cannot be read or parsed is skipped with a log entry;
// only a missing or unreadable folder is an error.
func (l *Loader) LoadFolder(dir string) ([]models.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read data folder %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !Supported(filepath.Ext(entry.Name())) {
			l.logger.Debug("ignoring unsupported file", zap.String("file", entry.Name()))
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := priorityOf(names[i]), priorityOf(names[j])
		if pi != pj {
			return pi < pj
		}
		return names[i] < names[j]
	})

	var docs []models.Document
	for _, name := range names {
		text, err := l.extractor.Extract(filepath.Join(dir, name))
		if err != nil {
			l.logger.Warn("skipping unreadable file", zap.String("file", name), zap.Error(err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			l.logger.Warn("skipping file with no extractable text", zap.String("file", name))
			continue
		}
		docs = append(docs, models.Document{Text: text, Source: name})
	}
	l.logger.Info("loaded documents", zap.String("folder", dir), zap.Int("documents", len(docs)))
	return docs, nil
}

func priorityOf(name string) int {
	if p, ok := extPriority[strings.ToLower(filepath.Ext(name))]; ok {
		return p
	}
	return len(extPriority)
}
