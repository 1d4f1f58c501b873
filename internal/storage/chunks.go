package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ChunkRecord is one stored summary chunk.
type ChunkRecord struct {
	ID      string
	Text    string
	Type    string
	Country string
	Period  string
}

// ChunkFilter narrows searches by metadata. Zero values mean no
// constraint.
type ChunkFilter struct {
	Type      string
	Countries []string
	StartDate string
	EndDate   string
}

// ChunkMatch is a search hit with its match tier. Distance is derived
// from the tier: exact matches are closest, substring fallbacks furthest.
type ChunkMatch struct {
	ChunkRecord
	MatchType string
	Distance  float64
}

// Distances assigned per match tier. FTS gives no true vector distance,
// so the tier stands in for it.
const (
	exactDistance     = 0.10
	prefixDistance    = 0.30
	substringDistance = 0.50
)

// ChunkStore persists and searches summary chunks.
type ChunkStore struct {
	db *DB
}

// NewChunkStore creates a chunk store over an open database.
func NewChunkStore(db *DB) *ChunkStore {
	return &ChunkStore{db: db}
}

// Upsert inserts or replaces a single chunk by ID.
func (s *ChunkStore) Upsert(ctx context.Context, rec ChunkRecord) error {
	_, err := s.db.conn.ExecContext(ctx, `
		INSERT INTO chunks (id, text, chunk_type, country, period)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			text = excluded.text,
			chunk_type = excluded.chunk_type,
			country = excluded.country,
			period = excluded.period
	`, rec.ID, rec.Text, rec.Type, rec.Country, rec.Period)
	if err != nil {
		return fmt.Errorf("failed to upsert chunk %s: %w", rec.ID, err)
	}
	return nil
}

// BulkInsert inserts many chunks in one transaction. Existing IDs are
// replaced.
func (s *ChunkStore) BulkInsert(ctx context.Context, records []ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}

	return s.db.WithTx(func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO chunks (id, text, chunk_type, country, period)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				text = excluded.text,
				chunk_type = excluded.chunk_type,
				country = excluded.country,
				period = excluded.period
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range records {
			if _, err := stmt.ExecContext(ctx, rec.ID, rec.Text, rec.Type, rec.Country, rec.Period); err != nil {
				return fmt.Errorf("failed to insert chunk %s: %w", rec.ID, err)
			}
		}
		return nil
	})
}

// Search runs the tiered lookup: FTS phrase match first, then FTS prefix
// match, then a LIKE fallback, deduplicating across tiers until limit
// results are collected. Results within a tier are BM25-ordered.
func (s *ChunkStore) Search(ctx context.Context, query string, limit int, filter *ChunkFilter) ([]ChunkMatch, error) {
	if limit <= 0 {
		limit = 10
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	var results []ChunkMatch
	seen := make(map[string]bool)

	collect := func(matches []ChunkMatch) {
		for _, m := range matches {
			if len(results) >= limit {
				return
			}
			if !seen[m.ID] {
				seen[m.ID] = true
				results = append(results, m)
			}
		}
	}

	exact, err := s.searchFTS(ctx, fmt.Sprintf(`"%s"`, escapeFTSQuery(query)), "exact", exactDistance, limit, filter)
	if err != nil {
		return nil, err
	}
	collect(exact)

	if len(results) < limit {
		prefix, err := s.searchFTS(ctx, prefixFTSQuery(query), "prefix", prefixDistance, limit-len(results), filter)
		if err == nil {
			collect(prefix)
		}
	}

	if len(results) < limit {
		like, err := s.searchLike(ctx, query, limit-len(results), filter)
		if err == nil {
			collect(like)
		}
	}

	return results, nil
}

func (s *ChunkStore) searchFTS(ctx context.Context, ftsQuery, matchType string, distance float64, limit int, filter *ChunkFilter) ([]ChunkMatch, error) {
	where, args := filterClauses(filter)
	args = append([]interface{}{ftsQuery}, args...)
	args = append(args, limit)

	rows, err := s.db.conn.QueryContext(ctx, fmt.Sprintf(`
		SELECT c.id, c.text, c.chunk_type, c.country, c.period
		FROM chunks_fts f
		JOIN chunks c ON f.rowid = c.rowid
		WHERE chunks_fts MATCH ?%s
		ORDER BY bm25(chunks_fts)
		LIMIT ?
	`, where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMatches(rows, matchType, distance)
}

func (s *ChunkStore) searchLike(ctx context.Context, query string, limit int, filter *ChunkFilter) ([]ChunkMatch, error) {
	where, filterArgs := filterClauses(filter)
	args := append([]interface{}{"%" + query + "%"}, filterArgs...)
	args = append(args, limit)

	rows, err := s.db.conn.QueryContext(ctx, fmt.Sprintf(`
		SELECT c.id, c.text, c.chunk_type, c.country, c.period
		FROM chunks c
		WHERE c.text LIKE ?%s
		LIMIT ?
	`, where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMatches(rows, "substring", substringDistance)
}

func scanMatches(rows *sql.Rows, matchType string, distance float64) ([]ChunkMatch, error) {
	var results []ChunkMatch
	for rows.Next() {
		var m ChunkMatch
		var country, period sql.NullString
		if err := rows.Scan(&m.ID, &m.Text, &m.Type, &country, &period); err != nil {
			return nil, err
		}
		m.Country = country.String
		m.Period = period.String
		m.MatchType = matchType
		m.Distance = distance
		results = append(results, m)
	}
	return results, rows.Err()
}

// filterClauses renders filter constraints as extra AND clauses against
// the joined chunks table.
func filterClauses(filter *ChunkFilter) (string, []interface{}) {
	if filter == nil {
		return "", nil
	}

	var clauses []string
	var args []interface{}

	if filter.Type != "" {
		clauses = append(clauses, "c.chunk_type = ?")
		args = append(args, filter.Type)
	}
	if len(filter.Countries) > 0 {
		placeholders := strings.Repeat("?,", len(filter.Countries))
		clauses = append(clauses, fmt.Sprintf("c.country IN (%s)", placeholders[:len(placeholders)-1]))
		for _, country := range filter.Countries {
			args = append(args, country)
		}
	}
	if filter.StartDate != "" {
		clauses = append(clauses, "c.period >= ?")
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		clauses = append(clauses, "c.period <= ?")
		args = append(args, filter.EndDate)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(clauses, " AND "), args
}

// CountByType returns chunk counts grouped by chunk type.
func (s *ChunkStore) CountByType(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.conn.QueryContext(ctx, "SELECT chunk_type, COUNT(*) FROM chunks GROUP BY chunk_type")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var chunkType string
		var count int
		if err := rows.Scan(&chunkType, &count); err != nil {
			return nil, err
		}
		counts[chunkType] = count
	}
	return counts, rows.Err()
}

// Count returns the total number of stored chunks.
func (s *ChunkStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count)
	return count, err
}

// escapeFTSQuery escapes double quotes for use inside an FTS5 phrase.
func escapeFTSQuery(query string) string {
	return strings.ReplaceAll(query, `"`, `""`)
}

// prefixFTSQuery turns each query term into a prefix token so multi-word
// queries still match.
func prefixFTSQuery(query string) string {
	terms := strings.Fields(escapeFTSQuery(query))
	for i, term := range terms {
		terms[i] = fmt.Sprintf(`"%s"*`, term)
	}
	return strings.Join(terms, " ")
}
