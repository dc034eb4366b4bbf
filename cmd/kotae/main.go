// Package main is the Kotae CLI entry point.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/kotae/internal/answerer"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/ingest"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/ranking"
	"github.com/hyperjump/kotae/internal/retrieval"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vectordb"
	"github.com/hyperjump/kotae/internal/watcher"
	"github.com/hyperjump/kotae/pkg/utils"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kotae/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "kotae server" from the project dir uses the project's
// config. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// Secrets (API keys) come from the environment; .env is a convenience
	// for development and absence is not an error.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ingest":
		runIngest()
	case "console":
		runConsole()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func setup(args []string) (*config.Config, string, *zap.Logger) {
	fs := flag.NewFlagSet(args[0], flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(args[1:])

	cfg, resolvedPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("config loaded",
		zap.String("config_path", resolvedPath),
		zap.Bool("debug", debugMode),
	)
	return cfg, resolvedPath, logger
}

func runServer() {
	cfg, _, logger := setup(os.Args[1:])
	defer logger.Sync()

	components, err := initializeComponents(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	// Populate the index at startup; an already populated collection makes
	// this a no-op unless force_reingestion is set.
	if _, err := components.Ingestor.Run(context.Background(), cfg.Ingest.ForceReingestion); err != nil {
		logger.Warn("startup ingestion failed, serving with existing index", zap.Error(err))
	}

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	var watchSvc *watcher.Watcher
	if cfg.Watch.Enabled {
		ingestor := components.Ingestor
		watchSvc = watcher.NewWatcher(
			cfg.DataFolder,
			time.Duration(cfg.Watch.DebounceMillis)*time.Millisecond,
			func() {
				if _, err := ingestor.Run(context.Background(), true); err != nil {
					logger.Warn("watch-triggered ingestion failed", zap.Error(err))
				}
			},
			logger,
		)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
	}

	srv := server.NewServer(
		components.Retriever,
		components.Answerer,
		components.Ingestor,
		components.Storage,
		components.VectorStore,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if watchSvc != nil {
		watchSvc.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	force := fs.Bool("force", false, "drop and rebuild the collection")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	chunks, err := components.Ingestor.Run(context.Background(), *force || cfg.Ingest.ForceReingestion)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingestion failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Ingested %d chunks from %s\n", chunks, cfg.DataFolder)
}

func runConsole() {
	cfg, _, logger := setup(os.Args[1:])
	defer logger.Sync()

	components, err := initializeComponents(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	if _, err := components.Ingestor.Run(context.Background(), cfg.Ingest.ForceReingestion); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ingestion failed: %v\n", err)
	}

	session := uuid.NewString()
	fmt.Printf("Interactive console (session %s). Type 'exit' to quit.\n", session)

	var history []models.Message
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "exit" || query == "quit" {
			break
		}
		ctx := context.Background()
		blocks := components.Retriever.Retrieve(ctx, query)
		answer, err := components.Answerer.Answer(ctx, query, blocks, history)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		fmt.Println(answer)
		history = append(history,
			models.Message{Role: models.RoleUser, Content: query},
			models.Message{Role: models.RoleAssistant, Content: answer},
		)
		if limit := cfg.Retrieval.HistoryLimit; limit > 0 && len(history) > limit {
			history = history[len(history)-limit:]
		}
	}
}

func runStatus() {
	cfg, _, logger := setup(os.Args[1:])
	defer logger.Sync()

	components, err := initializeComponents(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	count, err := components.VectorStore.Count(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Collection:  %s (%s)\n", cfg.VectorDB.Collection, cfg.VectorDB.Provider)
	fmt.Printf("Entries:     %d\n", count)
	fmt.Printf("Embedding:   %s (%d dims)\n", cfg.Embedding.Provider, cfg.Embedding.Dimensions)
	fmt.Printf("Chunking:    size %d, overlap %d\n", cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	fmt.Printf("Data folder: %s\n", cfg.DataFolder)
}

// Components holds every long-lived service, built once at startup and
// passed by handle.
type Components struct {
	Storage     storage.Storage
	Embedder    embedding.Embedder
	VectorStore vectordb.Store
	Retriever   *retrieval.Retriever
	Answerer    answerer.Answerer
	Ingestor    *ingest.Service
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.VectorStore != nil {
		_ = c.VectorStore.Close()
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	embedder, err := embedding.NewEmbedder(&cfg.Embedding)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize embedder (provider %q): %w",
			cfg.Embedding.Provider, err)
	}

	vectors, err := vectordb.NewStore(&cfg.VectorDB, embedder.Dimensions(), embedder.Embed, logger)
	if err != nil {
		_ = store.Close()
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}
	if err := vectors.Open(ctx); err != nil {
		_ = store.Close()
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}
	logger.Info("vector store ready",
		zap.String("provider", cfg.VectorDB.Provider),
		zap.String("collection", cfg.VectorDB.Collection))

	chunker := ingest.NewChunker(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap, logger)
	pipeline := ingest.NewPipeline(chunker, embedder, vectors, logger)
	ingestor := ingest.NewService(extract.NewLoader(logger), pipeline, cfg.DataFolder)

	ranker := ranking.NewRanker(embedder, logger)
	retriever := retrieval.NewRetriever(
		vectors,
		ranker,
		cfg.Retrieval.NResults,
		time.Duration(cfg.Retrieval.TimeoutSeconds)*time.Second,
		logger,
	)

	var llm answerer.Answerer
	gemini, err := answerer.NewGeminiAnswerer(ctx, answerer.GeminiConfig{
		Model:        cfg.Answerer.Model,
		APIKeyEnv:    cfg.Answerer.APIKeyEnv,
		Temperature:  cfg.Answerer.Temperature,
		ContactEmail: cfg.Answerer.ContactEmail,
	}, logger)
	if err != nil {
		logger.Warn("model unavailable, chat will use fallback answers", zap.Error(err))
	} else {
		llm = gemini
	}
	svc := answerer.NewService(llm, cfg.Answerer.ContactEmail, logger)

	return &Components{
		Storage:     store,
		Embedder:    embedder,
		VectorStore: vectors,
		Retriever:   retriever,
		Answerer:    svc,
		Ingestor:    ingestor,
	}, nil
}

func printUsage() {
	fmt.Println(`kotae - RAG chatbot over a local document folder

Usage:
  kotae server [flags]    Start the HTTP server
  kotae ingest [flags]    Load the data folder into the vector collection
  kotae console [flags]   Interactive question-answering loop
  kotae status [flags]    Show collection and config status
  kotae version           Show version
  kotae help              Show this help

Flags:
  --config string    Config file path (default: /usr/local/etc/kotae/config.yaml)
  --debug            Enable debug logging

Ingest Flags:
  --force            Drop and rebuild the vector collection

Configuration is YAML; see config.yaml for the full surface. API keys are read
from the environment (a .env file is honored in development).`)
}
