package rag

import "sort"

// typeBoosts are static content-type priorities blended into the rerank
// score. Country summaries are the most information-dense chunks, daily
// slices the least.
var typeBoosts = map[string]float64{
	"country_summary": 1.20,
	"anomaly":         1.15,
	"monthly":         1.10,
	"weekly":          1.05,
	"daily":           1.00,
}

// TypeBoost returns the boost for a chunk type; unknown types get 1.0.
func TypeBoost(chunkType string) float64 {
	if boost, ok := typeBoosts[chunkType]; ok {
		return boost
	}
	return 1.0
}

// Rerank scores candidates with score = (1 - distance) * typeBoost and
// orders them descending. The sort is stable, so equal-score chunks keep
// their retrieval order and reranking the same input always yields the
// same output.
func Rerank(candidates []Chunk) []RankedChunk {
	ranked := make([]RankedChunk, len(candidates))
	for i, chunk := range candidates {
		ranked[i] = RankedChunk{
			Chunk:       chunk,
			RerankScore: (1.0 - chunk.Distance) * TypeBoost(chunk.Metadata.Type),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RerankScore > ranked[j].RerankScore
	})

	return ranked
}
