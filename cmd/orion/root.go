package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"orion/internal/config"
	"orion/internal/errors"
	"orion/internal/ingest"
	"orion/internal/llm"
	"orion/internal/logging"
	"orion/internal/rag"
	"orion/internal/retrieval"
	"orion/internal/security"
	"orion/internal/storage"
	"orion/internal/version"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "orion",
	Short: "Orion - sentiment analysis RAG backend",
	Long: `Orion answers analytical questions about global sentiment trends by
retrieving from a local summary store and generating responses through an
OpenAI-compatible model. Every query passes a stateful security gate
before anything reaches retrieval or generation.`,
	Version: version.Info(),
}

func init() {
	rootCmd.SetVersionTemplate("Orion version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".",
		"Directory containing orion.json")
}

// loadConfig reads the config and applies validation.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  logging.LogLevel(cfg.Logging.Level),
	})
}

// app bundles the wired components shared by the serve and query
// commands.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	db       *storage.DB
	store    *storage.ChunkStore
	engine   *rag.Engine
	ingestor *ingest.Ingestor
}

// buildApp wires storage, gate, retriever, and generator from config.
func buildApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	db, err := storage.Open(cfg.Storage.Path, logger)
	if err != nil {
		return nil, err
	}
	store := storage.NewChunkStore(db)

	patterns := security.BuiltinPatterns()
	if cfg.Security.PatternsFile != "" {
		patterns, err = security.LoadPatternFile(cfg.Security.PatternsFile)
		if err != nil {
			db.Close()
			return nil, errors.New(errors.InternalError, "failed to load pattern file", err)
		}
	}

	gate := security.NewGate(security.Config{
		MaxQueriesPerMinute: cfg.Security.MaxQueriesPerMinute,
		MaxQueriesPerHour:   cfg.Security.MaxQueriesPerHour,
		RateLimitEnabled:    cfg.Security.RateLimitEnabled,
	}, security.NewClassifiers(patterns), security.NewMemoryStateStore(), logger)

	generator := llm.NewClient(llm.Config{
		BaseURL:      cfg.LLM.BaseURL,
		APIKey:       os.Getenv("OPENAI_API_KEY"),
		Model:        cfg.LLM.Model,
		Temperature:  cfg.LLM.Temperature,
		MaxTokens:    cfg.LLM.MaxTokens,
		HistoryTurns: cfg.LLM.HistoryTurns,
	}, logger)

	engine := rag.NewEngine(rag.Config{
		RetrievalTopK:     cfg.Retrieval.TopK,
		MaxContextChunks:  cfg.Retrieval.MaxContextChunks,
		MaxSources:        cfg.Retrieval.MaxSources,
		MaxResponseTokens: cfg.Security.MaxResponseTokens,
	}, gate, retrieval.NewStoreRetriever(store, logger), generator, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		store:    store,
		engine:   engine,
		ingestor: ingest.NewIngestor(store, logger),
	}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
