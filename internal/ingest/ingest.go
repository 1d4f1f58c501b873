package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"orion/internal/logging"
	"orion/internal/storage"
)

// Ingestor reads manifest-described summary files and writes their
// chunks to the store.
type Ingestor struct {
	store  *storage.ChunkStore
	logger *logging.Logger
}

// NewIngestor creates an ingestor over an open chunk store.
func NewIngestor(store *storage.ChunkStore, logger *logging.Logger) *Ingestor {
	return &Ingestor{store: store, logger: logger}
}

// Result reports what one ingest run loaded.
type Result struct {
	Files  int
	Chunks int
}

// Run loads every summary named by the manifest at manifestPath. Summary
// paths are resolved relative to the manifest's directory. Each
// blank-line-separated paragraph becomes one chunk with a fresh UUID.
func (ing *Ingestor) Run(ctx context.Context, manifestPath string) (*Result, error) {
	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	baseDir := filepath.Dir(manifestPath)
	var records []storage.ChunkRecord

	for _, summary := range manifest.Summaries {
		text, err := readSummaryFile(filepath.Join(baseDir, summary.Path))
		if err != nil {
			return nil, fmt.Errorf("failed to read summary %q: %w", summary.Path, err)
		}

		for _, paragraph := range splitParagraphs(text) {
			records = append(records, storage.ChunkRecord{
				ID:      uuid.NewString(),
				Text:    paragraph,
				Type:    summary.Type,
				Country: summary.Country,
				Period:  summary.Period,
			})
		}
	}

	if err := ing.store.BulkInsert(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to store chunks: %w", err)
	}

	ing.logger.Info("ingest complete", map[string]interface{}{
		"files":  len(manifest.Summaries),
		"chunks": len(records),
	})
	return &Result{Files: len(manifest.Summaries), Chunks: len(records)}, nil
}

// readSummaryFile reads a summary, transparently decompressing files
// with a .zst extension.
func readSummaryFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	if strings.HasSuffix(path, ".zst") {
		decoder, err := zstd.NewReader(nil)
		if err != nil {
			return "", fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		defer decoder.Close()

		decoded, err := decoder.DecodeAll(data, nil)
		if err != nil {
			return "", fmt.Errorf("failed to decompress: %w", err)
		}
		data = decoded
	}

	return string(data), nil
}

// splitParagraphs splits text on blank lines, dropping empty segments.
func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			paragraphs = append(paragraphs, block)
		}
	}
	return paragraphs
}
