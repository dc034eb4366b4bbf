package embedding

import (
	"fmt"

	"github.com/hyperjump/kotae/internal/config"
)

// Provider identifies an embedder implementation.
type Provider string

const (
	// ProviderONNX runs a local ONNX sentence-transformer model (requires CGO).
	ProviderONNX Provider = "onnx"
	// ProviderRemote calls an OpenAI-compatible embeddings endpoint.
	ProviderRemote Provider = "remote"
	// ProviderMock produces deterministic hash-derived embeddings (tests only).
	ProviderMock Provider = "mock"
)

// NewEmbedder creates the embedder named by cfg.Provider.
// A failure here is an initialization failure: the caller must treat it as
// fatal rather than retry per call.
func NewEmbedder(cfg *config.EmbeddingConfig) (Embedder, error) {
	switch Provider(cfg.Provider) {
	case ProviderONNX, "":
		return NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens, cfg.CacheSize)
	case ProviderRemote:
		return NewRemoteEmbedder(RemoteConfig{
			BaseURL:    cfg.BaseURL,
			APIKeyEnv:  cfg.APIKeyEnv,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			BatchSize:  cfg.BatchSize,
			CacheSize:  cfg.CacheSize,
		})
	case ProviderMock:
		return NewMockEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: onnx, remote, mock)", cfg.Provider)
	}
}
