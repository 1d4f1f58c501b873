package storage

import (
	"context"
	"path/filepath"
	"testing"

	"orion/internal/logging"
)

func testDB(t *testing.T) *DB {
	t.Helper()

	logger := logging.NewLogger(logging.Config{Format: logging.JSONFormat, Level: logging.ErrorLevel})
	db, err := Open(filepath.Join(t.TempDir(), "orion.db"), logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedChunks(t *testing.T, store *ChunkStore) {
	t.Helper()

	records := []ChunkRecord{
		{ID: "c1", Text: "Sentiment in Germany declined sharply during March 2020.", Type: "monthly", Country: "Germany", Period: "2020-03"},
		{ID: "c2", Text: "Germany annual sentiment overview covering 2020.", Type: "country_summary", Country: "Germany", Period: "2020"},
		{ID: "c3", Text: "Unusual sentiment spike detected in Japan.", Type: "anomaly", Country: "Japan", Period: "2020-04"},
		{ID: "c4", Text: "Weekly sentiment digest for France.", Type: "weekly", Country: "France", Period: "2020-W12"},
	}
	if err := store.BulkInsert(context.Background(), records); err != nil {
		t.Fatalf("BulkInsert: %v", err)
	}
}

func TestOpenCreatesSchema(t *testing.T) {
	db := testDB(t)

	var name string
	err := db.Conn().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='chunks'").Scan(&name)
	if err != nil {
		t.Fatalf("chunks table missing: %v", err)
	}
}

func TestOpenIdempotent(t *testing.T) {
	logger := logging.NewLogger(logging.Config{Format: logging.JSONFormat, Level: logging.ErrorLevel})
	path := filepath.Join(t.TempDir(), "orion.db")

	db, err := Open(path, logger)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	db.Close()

	db, err = Open(path, logger)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	db.Close()
}

func TestUpsertReplacesByID(t *testing.T) {
	db := testDB(t)
	store := NewChunkStore(db)
	ctx := context.Background()

	if err := store.Upsert(ctx, ChunkRecord{ID: "c1", Text: "old text", Type: "daily"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := store.Upsert(ctx, ChunkRecord{ID: "c1", Text: "new text", Type: "monthly"}); err != nil {
		t.Fatalf("Upsert replace: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	matches, err := store.Search(ctx, "new text", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 1 || matches[0].Type != "monthly" {
		t.Errorf("matches = %+v", matches)
	}
}

func TestSearchExactTier(t *testing.T) {
	db := testDB(t)
	store := NewChunkStore(db)
	seedChunks(t, store)

	matches, err := store.Search(context.Background(), "declined sharply", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("no matches")
	}
	if matches[0].ID != "c1" || matches[0].MatchType != "exact" {
		t.Errorf("top match = %+v, want c1 exact", matches[0])
	}
	if matches[0].Distance != exactDistance {
		t.Errorf("distance = %v, want %v", matches[0].Distance, exactDistance)
	}
}

func TestSearchPrefixTier(t *testing.T) {
	db := testDB(t)
	store := NewChunkStore(db)
	seedChunks(t, store)

	// "declin" is not a full token, so the exact phrase tier misses and
	// the prefix tier picks it up.
	matches, err := store.Search(context.Background(), "declin", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("no matches")
	}
	if matches[0].ID != "c1" || matches[0].MatchType != "prefix" {
		t.Errorf("top match = %+v, want c1 prefix", matches[0])
	}
}

func TestSearchDeduplicatesAcrossTiers(t *testing.T) {
	db := testDB(t)
	store := NewChunkStore(db)
	seedChunks(t, store)

	matches, err := store.Search(context.Background(), "sentiment", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	seen := make(map[string]bool)
	for _, m := range matches {
		if seen[m.ID] {
			t.Errorf("duplicate chunk %s across tiers", m.ID)
		}
		seen[m.ID] = true
	}
}

func TestSearchHonorsLimit(t *testing.T) {
	db := testDB(t)
	store := NewChunkStore(db)
	seedChunks(t, store)

	matches, err := store.Search(context.Background(), "sentiment", 2, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) > 2 {
		t.Errorf("got %d matches, limit was 2", len(matches))
	}
}

func TestSearchFilters(t *testing.T) {
	db := testDB(t)
	store := NewChunkStore(db)
	seedChunks(t, store)
	ctx := context.Background()

	matches, err := store.Search(ctx, "sentiment", 10, &ChunkFilter{Type: "anomaly"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, m := range matches {
		if m.Type != "anomaly" {
			t.Errorf("type filter leaked %+v", m)
		}
	}

	matches, err = store.Search(ctx, "sentiment", 10, &ChunkFilter{Countries: []string{"Germany"}})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("country filter returned nothing")
	}
	for _, m := range matches {
		if m.Country != "Germany" {
			t.Errorf("country filter leaked %+v", m)
		}
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	db := testDB(t)
	store := NewChunkStore(db)
	seedChunks(t, store)

	matches, err := store.Search(context.Background(), "   ", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("blank query returned %d matches", len(matches))
	}
}

func TestCountByType(t *testing.T) {
	db := testDB(t)
	store := NewChunkStore(db)
	seedChunks(t, store)

	counts, err := store.CountByType(context.Background())
	if err != nil {
		t.Fatalf("CountByType: %v", err)
	}
	if counts["monthly"] != 1 || counts["country_summary"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}
