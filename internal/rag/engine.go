package rag

import (
	"context"

	"orion/internal/errors"
	"orion/internal/logging"
	"orion/internal/security"
)

// Config holds the pipeline's tunables.
type Config struct {
	RetrievalTopK     int
	MaxContextChunks  int
	MaxSources        int
	MaxResponseTokens int
}

// Engine sequences the query pipeline: security gate, retrieval, rerank,
// context assembly, generation, and the response size guard.
type Engine struct {
	cfg       Config
	gate      *security.Gate
	retriever Retriever
	generator Generator
	logger    *logging.Logger
}

// NewEngine creates a pipeline engine.
func NewEngine(cfg Config, gate *security.Gate, retriever Retriever, generator Generator, logger *logging.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		gate:      gate,
		retriever: retriever,
		generator: generator,
		logger:    logger,
	}
}

// Validate exposes the security gate decision without running the rest of
// the pipeline.
func (e *Engine) Validate(query, userID string) security.Decision {
	return e.gate.Validate(query, userID)
}

// ProcessQuery runs one query through the full pipeline. Security denials
// are terminal and returned as a blocked Result, never retried. Retrieval
// failure degrades to an empty context; generation failure propagates.
func (e *Engine) ProcessQuery(ctx context.Context, query, userID string, filter *SearchFilter, history []HistoryTurn) (*Result, error) {
	decision := e.gate.Validate(query, userID)
	if !decision.Allowed {
		return &Result{
			Response:  "Query rejected: " + decision.Reason,
			Sources:   []Source{},
			QueryType: "blocked",
			Blocked:   true,
			DenyCode:  decision.Code,
		}, nil
	}

	// The gate holds no locks here; the external calls below must never
	// block a security decision for another query.
	chunks := e.retrieve(ctx, query, filter)
	ranked := Rerank(chunks)
	contextText := BuildContext(ranked, e.cfg.MaxContextChunks)

	generated, err := e.generator.Generate(ctx, GenerateRequest{
		Query:   query,
		Context: contextText,
		History: history,
	})
	if err != nil {
		return nil, errors.New(errors.UpstreamFailure, "generation failed", err)
	}

	response, truncated := security.EnforceResponseSize(generated.Text, e.cfg.MaxResponseTokens)
	if truncated {
		e.logger.Warn("response truncated by size guard", map[string]interface{}{
			"maxTokens": e.cfg.MaxResponseTokens,
		})
	}

	return &Result{
		Response:  response,
		Sources:   FormatSources(ranked, e.cfg.MaxSources),
		QueryType: string(ClassifyQuery(query)),
		Blocked:   false,
		Warning:   decision.Warning,
		Usage:     generated.Usage,
	}, nil
}

// retrieve calls the retriever and substitutes an empty result on failure
// so the pipeline degrades instead of aborting.
func (e *Engine) retrieve(ctx context.Context, query string, filter *SearchFilter) []Chunk {
	chunks, err := e.retriever.Search(ctx, query, e.cfg.RetrievalTopK, filter)
	if err != nil {
		e.logger.Warn("retrieval failed, continuing with empty context", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	e.logger.Debug("retrieved chunks", map[string]interface{}{
		"count": len(chunks),
	})
	return chunks
}

// StatsProvider is implemented by retrievers that can report store counts.
type StatsProvider interface {
	Stats(ctx context.Context) (map[string]int, error)
}

// Stats reports chunk counts by type when the retriever supports it.
func (e *Engine) Stats(ctx context.Context) (map[string]int, error) {
	if provider, ok := e.retriever.(StatsProvider); ok {
		return provider.Stats(ctx)
	}
	return map[string]int{}, nil
}
