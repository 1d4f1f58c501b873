package rag

import (
	"strings"
	"testing"
)

func ranked(n int, chunkType string) []RankedChunk {
	out := make([]RankedChunk, n)
	for i := range out {
		out[i] = RankedChunk{
			Chunk: Chunk{
				ID:       "chunk-" + string(rune('a'+i)),
				Text:     "text " + string(rune('a'+i)),
				Metadata: ChunkMetadata{Type: chunkType},
			},
			RerankScore: 1.0 - float64(i)*0.01,
		}
	}
	return out
}

func TestBuildContextFormat(t *testing.T) {
	chunks := []RankedChunk{
		{Chunk: Chunk{Text: "Sentiment rose in Q1.", Metadata: ChunkMetadata{Type: "monthly"}}},
		{Chunk: Chunk{Text: "Annual overview for Japan.", Metadata: ChunkMetadata{Type: "country_summary"}}},
	}

	got := BuildContext(chunks, 8)
	want := "[Source 1 - monthly]\nSentiment rose in Q1.\n\n[Source 2 - country_summary]\nAnnual overview for Japan.\n"
	if got != want {
		t.Errorf("BuildContext = %q, want %q", got, want)
	}
}

func TestBuildContextCapsChunks(t *testing.T) {
	got := BuildContext(ranked(12, "daily"), 8)
	if n := strings.Count(got, "[Source "); n != 8 {
		t.Errorf("context has %d source blocks, want 8", n)
	}
	if !strings.Contains(got, "[Source 8 - daily]") {
		t.Error("missing 8th source header")
	}
	if strings.Contains(got, "[Source 9") {
		t.Error("context exceeded chunk cap")
	}
}

func TestBuildContextEmpty(t *testing.T) {
	if got := BuildContext(nil, 8); got != "" {
		t.Errorf("BuildContext(nil) = %q, want empty", got)
	}
	if got := BuildContext(ranked(3, "daily"), 0); got != "" {
		t.Errorf("BuildContext with zero cap = %q, want empty", got)
	}
}

func TestBuildContextUnknownType(t *testing.T) {
	chunks := []RankedChunk{{Chunk: Chunk{Text: "no type"}}}
	if got := BuildContext(chunks, 8); !strings.Contains(got, "[Source 1 - unknown]") {
		t.Errorf("missing unknown-type header in %q", got)
	}
}

func TestFormatSourcesCap(t *testing.T) {
	sources := FormatSources(ranked(9, "weekly"), 5)
	if len(sources) != 5 {
		t.Fatalf("got %d sources, want 5", len(sources))
	}
	if sources[0].ChunkID != "chunk-a" || sources[4].ChunkID != "chunk-e" {
		t.Errorf("sources out of order: %s .. %s", sources[0].ChunkID, sources[4].ChunkID)
	}
	if sources[0].RelevanceScore != 1.0 {
		t.Errorf("RelevanceScore = %v, want rerank score 1.0", sources[0].RelevanceScore)
	}
}

func TestFormatSourcesIndependentOfContextCap(t *testing.T) {
	// maxSources < maxChunks: the source list is shorter than the context
	all := ranked(8, "daily")
	context := BuildContext(all, 8)
	sources := FormatSources(all, 5)

	if strings.Count(context, "[Source ") != 8 {
		t.Error("context should still hold 8 chunks")
	}
	if len(sources) != 5 {
		t.Errorf("got %d sources, want 5", len(sources))
	}
}

func TestFormatSourcesEmpty(t *testing.T) {
	sources := FormatSources(nil, 5)
	if sources == nil || len(sources) != 0 {
		t.Errorf("FormatSources(nil) = %v, want empty non-nil slice", sources)
	}
}
