package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"orion/internal/logging"
	"orion/internal/storage"
)

func testStore(t *testing.T) *storage.ChunkStore {
	t.Helper()

	logger := logging.NewLogger(logging.Config{Format: logging.JSONFormat, Level: logging.ErrorLevel})
	db, err := storage.Open(filepath.Join(t.TempDir(), "orion.db"), logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return storage.NewChunkStore(db)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func writeZstd(t *testing.T, path, content string) {
	t.Helper()
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd.NewWriter: %v", err)
	}
	compressed := encoder.EncodeAll([]byte(content), nil)
	encoder.Close()
	if err := os.WriteFile(path, compressed, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "manifest.toml"), `
version = 1

[[summaries]]
path = "germany.txt"
type = "monthly"
country = "Germany"
period = "2020-03"
`)

	m, err := LoadManifest(filepath.Join(dir, "manifest.toml"))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(m.Summaries) != 1 || m.Summaries[0].Country != "Germany" {
		t.Errorf("manifest = %+v", m)
	}
}

func TestLoadManifestRejectsUnknownType(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "manifest.toml"), `
[[summaries]]
path = "x.txt"
type = "hourly"
`)

	if _, err := LoadManifest(filepath.Join(dir, "manifest.toml")); err == nil {
		t.Fatal("unknown chunk type should be rejected")
	}
}

func TestLoadManifestRejectsEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "manifest.toml"), "version = 1\n")

	if _, err := LoadManifest(filepath.Join(dir, "manifest.toml")); err == nil {
		t.Fatal("empty manifest should be rejected")
	}
}

func TestRunIngestsPlainAndCompressed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "germany.txt"),
		"Sentiment declined in March.\n\nRecovery began in April.")
	writeZstd(t, filepath.Join(dir, "japan.txt.zst"),
		"Unusual spike detected in Japan.")
	writeFile(t, filepath.Join(dir, "manifest.toml"), `
version = 1

[[summaries]]
path = "germany.txt"
type = "monthly"
country = "Germany"
period = "2020-03"

[[summaries]]
path = "japan.txt.zst"
type = "anomaly"
country = "Japan"
period = "2020-04"
`)

	store := testStore(t)
	logger := logging.NewLogger(logging.Config{Format: logging.JSONFormat, Level: logging.ErrorLevel})
	result, err := NewIngestor(store, logger).Run(context.Background(), filepath.Join(dir, "manifest.toml"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Files != 2 {
		t.Errorf("files = %d, want 2", result.Files)
	}
	if result.Chunks != 3 {
		t.Errorf("chunks = %d, want 3 (two paragraphs + one compressed)", result.Chunks)
	}

	counts, err := store.CountByType(context.Background())
	if err != nil {
		t.Fatalf("CountByType: %v", err)
	}
	if counts["monthly"] != 2 || counts["anomaly"] != 1 {
		t.Errorf("counts = %v", counts)
	}

	matches, err := store.Search(context.Background(), "spike detected", 5, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) == 0 || matches[0].Country != "Japan" {
		t.Errorf("compressed summary not searchable: %+v", matches)
	}
}

func TestRunMissingSummaryFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "manifest.toml"), `
[[summaries]]
path = "missing.txt"
type = "daily"
`)

	store := testStore(t)
	logger := logging.NewLogger(logging.Config{Format: logging.JSONFormat, Level: logging.ErrorLevel})
	if _, err := NewIngestor(store, logger).Run(context.Background(), filepath.Join(dir, "manifest.toml")); err == nil {
		t.Fatal("missing summary file should fail the run")
	}
}

func TestSplitParagraphs(t *testing.T) {
	got := splitParagraphs("one\n\n\n\ntwo\n\n  \n\nthree\n")
	if len(got) != 3 || got[0] != "one" || got[2] != "three" {
		t.Errorf("splitParagraphs = %q", got)
	}
}
