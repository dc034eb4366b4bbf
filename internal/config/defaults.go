package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DataFolder == "" {
		cfg.DataFolder = "/usr/local/var/kotae/data"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/kotae/db/users.db"
	}
	if cfg.VectorDB.Provider == "" {
		cfg.VectorDB.Provider = "local"
	}
	if cfg.VectorDB.URL == "" {
		cfg.VectorDB.URL = "http://localhost:6333"
	}
	if cfg.VectorDB.APIKeyEnv == "" {
		cfg.VectorDB.APIKeyEnv = "QDRANT_API_KEY"
	}
	if cfg.VectorDB.Collection == "" {
		cfg.VectorDB.Collection = "company_data_collection"
	}
	if cfg.VectorDB.Path == "" {
		cfg.VectorDB.Path = "/usr/local/var/kotae/index/collection.bin"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "onnx"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "all-MiniLM-L6-v2"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/kotae/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "EMBEDDING_API_KEY"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 32
	}
	if cfg.Chunking.ChunkSize == 0 {
		cfg.Chunking.ChunkSize = 1000
	}
	if cfg.Chunking.ChunkOverlap == 0 {
		cfg.Chunking.ChunkOverlap = 200
	}
	if cfg.Retrieval.NResults == 0 {
		cfg.Retrieval.NResults = 5
	}
	if cfg.Retrieval.TimeoutSeconds == 0 {
		cfg.Retrieval.TimeoutSeconds = 30
	}
	if cfg.Retrieval.HistoryLimit == 0 {
		cfg.Retrieval.HistoryLimit = 20
	}
	if cfg.Answerer.Model == "" {
		cfg.Answerer.Model = "gemini-2.0-flash"
	}
	if cfg.Answerer.APIKeyEnv == "" {
		cfg.Answerer.APIKeyEnv = "GEMINI_API_KEY"
	}
	if cfg.Answerer.Temperature == 0 {
		cfg.Answerer.Temperature = 0.4
	}
	if cfg.Answerer.ContactEmail == "" {
		cfg.Answerer.ContactEmail = "contact@idctechnologies.com"
	}
	if cfg.Watch.DebounceMillis == 0 {
		cfg.Watch.DebounceMillis = 2000
	}
}
