// Package retrieval adapts the chunk store's tiered full-text search to
// the pipeline's retriever contract.
package retrieval

import (
	"context"

	"orion/internal/logging"
	"orion/internal/rag"
	"orion/internal/storage"
)

// StoreRetriever serves retrieval from the local SQLite chunk store.
type StoreRetriever struct {
	store  *storage.ChunkStore
	logger *logging.Logger
}

// NewStoreRetriever creates a retriever over an open chunk store.
func NewStoreRetriever(store *storage.ChunkStore, logger *logging.Logger) *StoreRetriever {
	return &StoreRetriever{store: store, logger: logger}
}

// Search implements rag.Retriever. Match tiers map to distances, so
// downstream reranking treats exact hits as closest.
func (r *StoreRetriever) Search(ctx context.Context, query string, topK int, filter *rag.SearchFilter) ([]rag.Chunk, error) {
	matches, err := r.store.Search(ctx, query, topK, toChunkFilter(filter))
	if err != nil {
		return nil, err
	}

	chunks := make([]rag.Chunk, 0, len(matches))
	for _, m := range matches {
		chunks = append(chunks, rag.Chunk{
			ID:   m.ID,
			Text: m.Text,
			Metadata: rag.ChunkMetadata{
				Type:    m.Type,
				Country: m.Country,
				Period:  m.Period,
			},
			Distance: m.Distance,
		})
	}

	r.logger.Debug("chunk store search", map[string]interface{}{
		"query": query,
		"hits":  len(chunks),
	})
	return chunks, nil
}

// Stats implements rag.StatsProvider.
func (r *StoreRetriever) Stats(ctx context.Context) (map[string]int, error) {
	return r.store.CountByType(ctx)
}

func toChunkFilter(filter *rag.SearchFilter) *storage.ChunkFilter {
	if filter == nil {
		return nil
	}
	return &storage.ChunkFilter{
		Type:      filter.Type,
		Countries: filter.Countries,
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
	}
}
