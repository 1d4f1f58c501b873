// Package rag implements the retrieval, rerank, and context assembly
// pipeline that turns a validated query into generation input and a
// client-facing source list.
package rag

import (
	"context"

	"orion/internal/errors"
)

// ChunkMetadata describes a retrievable summary: its temporal granularity
// (type), country, and period.
type ChunkMetadata struct {
	Type    string `json:"type"`
	Country string `json:"country,omitempty"`
	Period  string `json:"period,omitempty"`
}

// Chunk is one retrieval candidate. Distance is the vector distance in
// [0, 2], where 0 means identical.
type Chunk struct {
	ID       string        `json:"id"`
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
	Distance float64       `json:"distance"`
}

// RankedChunk is a Chunk with its derived rerank score.
type RankedChunk struct {
	Chunk
	RerankScore float64 `json:"rerankScore"`
}

// Source is one entry of the client-facing source list.
type Source struct {
	ChunkID        string        `json:"chunkId"`
	ChunkType      string        `json:"chunkType"`
	RelevanceScore float64       `json:"relevanceScore"`
	Metadata       ChunkMetadata `json:"metadata"`
}

// SearchFilter narrows retrieval by metadata.
type SearchFilter struct {
	Type      string
	Countries []string
	StartDate string
	EndDate   string
}

// Retriever is the vector-similarity search collaborator. Results are
// ordered by ascending distance. Implementations own their timeouts; the
// pipeline recovers from failures by substituting an empty result.
type Retriever interface {
	Search(ctx context.Context, query string, topK int, filter *SearchFilter) ([]Chunk, error)
}

// HistoryTurn is one prior conversation turn passed through to generation.
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token accounting from the generation call.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// GenerateRequest carries everything the generation collaborator needs.
type GenerateRequest struct {
	Query   string
	Context string
	History []HistoryTurn
}

// GenerateResult is the generation collaborator's output.
type GenerateResult struct {
	Text  string
	Usage Usage
}

// Generator is the text-generation collaborator. Retry policy, if any,
// belongs to the implementation; the pipeline never retries.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}

// Result is the pipeline's answer for one query.
type Result struct {
	Response  string   `json:"response"`
	Sources   []Source `json:"sources"`
	QueryType string   `json:"queryType"`
	Blocked   bool     `json:"blocked"`
	Warning   string   `json:"warning,omitempty"`
	Usage     Usage    `json:"usage"`

	// DenyCode carries the gate's error code on blocked results so the
	// transport layer can pick a status without parsing the reason text.
	DenyCode errors.ErrorCode `json:"-"`
}
