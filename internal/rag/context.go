package rag

import (
	"fmt"
	"strings"
)

// BuildContext concatenates the top maxChunks ranked chunks into the
// generation context. Each block gets a 1-indexed "[Source i - type]"
// header followed by the chunk text and a blank line. Never emits more
// than maxChunks blocks regardless of candidate count.
func BuildContext(ranked []RankedChunk, maxChunks int) string {
	if maxChunks <= 0 || len(ranked) == 0 {
		return ""
	}
	if len(ranked) > maxChunks {
		ranked = ranked[:maxChunks]
	}

	parts := make([]string, 0, len(ranked)*3)
	for i, chunk := range ranked {
		chunkType := chunk.Metadata.Type
		if chunkType == "" {
			chunkType = "unknown"
		}
		parts = append(parts, fmt.Sprintf("[Source %d - %s]", i+1, chunkType))
		parts = append(parts, chunk.Text)
		parts = append(parts, "")
	}

	return strings.Join(parts, "\n")
}

// FormatSources builds the client-facing source list, capped at maxSources
// independently of the context chunk cap.
func FormatSources(ranked []RankedChunk, maxSources int) []Source {
	if maxSources <= 0 {
		return []Source{}
	}
	if len(ranked) > maxSources {
		ranked = ranked[:maxSources]
	}

	sources := make([]Source, 0, len(ranked))
	for _, chunk := range ranked {
		chunkType := chunk.Metadata.Type
		if chunkType == "" {
			chunkType = "unknown"
		}
		sources = append(sources, Source{
			ChunkID:        chunk.ID,
			ChunkType:      chunkType,
			RelevanceScore: chunk.RerankScore,
			Metadata:       chunk.Metadata,
		})
	}

	return sources
}
