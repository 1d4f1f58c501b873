package storage

import "fmt"

// initializeSchema creates the chunk table, its FTS5 index, and the sync
// triggers. All statements are idempotent so reopening an existing
// database is safe.
func (db *DB) initializeSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS chunks (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT UNIQUE NOT NULL,
			text TEXT NOT NULL,
			chunk_type TEXT NOT NULL,
			country TEXT,
			period TEXT,
			ingested_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		"CREATE INDEX IF NOT EXISTS idx_chunks_type ON chunks(chunk_type)",
		"CREATE INDEX IF NOT EXISTS idx_chunks_country ON chunks(country)",
		"CREATE INDEX IF NOT EXISTS idx_chunks_period ON chunks(period)",

		`CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
			text,
			content='chunks',
			content_rowid='rowid'
		)`,

		`CREATE TRIGGER IF NOT EXISTS chunks_ai AFTER INSERT ON chunks BEGIN
			INSERT INTO chunks_fts(rowid, text) VALUES (new.rowid, new.text);
		END`,
		`CREATE TRIGGER IF NOT EXISTS chunks_au AFTER UPDATE ON chunks BEGIN
			INSERT INTO chunks_fts(chunks_fts, rowid, text) VALUES ('delete', old.rowid, old.text);
			INSERT INTO chunks_fts(rowid, text) VALUES (new.rowid, new.text);
		END`,
		`CREATE TRIGGER IF NOT EXISTS chunks_ad AFTER DELETE ON chunks BEGIN
			INSERT INTO chunks_fts(chunks_fts, rowid, text) VALUES ('delete', old.rowid, old.text);
		END`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}

	return nil
}
