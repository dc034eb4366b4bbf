package vectordb

import (
	"fmt"

	"github.com/hyperjump/kotae/internal/config"
	"go.uber.org/zap"
)

// Store providers.
const (
	ProviderQdrant = "qdrant"
	ProviderLocal  = "local"
)

// NewStore creates a vector store from config. embed is used to vectorize
// query text.
func NewStore(cfg *config.VectorDBConfig, dimensions int, embed EmbedFunc, logger *zap.Logger) (Store, error) {
	switch cfg.Provider {
	case ProviderQdrant:
		return NewQdrantStore(QdrantConfig{
			URL:        cfg.URL,
			APIKeyEnv:  cfg.APIKeyEnv,
			Collection: cfg.Collection,
			Dimensions: dimensions,
		}, embed, logger), nil
	case ProviderLocal:
		return NewLocalStore(cfg.Path, embed), nil
	default:
		return nil, fmt.Errorf("unknown vector store provider: %q", cfg.Provider)
	}
}
