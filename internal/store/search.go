package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rcliao/triage-corpus/internal/model"
)

// SearchParams holds parameters for searching stored samples.
type SearchParams struct {
	Query    string
	RunID    string
	Category string
	Limit    int
}

// SearchResult is a matched sample with its location.
type SearchResult struct {
	model.Sample
	RunID string `json:"run_id"`
	Seq   int    `json:"seq"`
	Split string `json:"split,omitempty"`
}

// Search finds samples whose text matches every query term, best match first.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	match := ftsQuery(p.Query)
	if match == "" {
		return nil, fmt.Errorf("search: empty query")
	}
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"samples_fts MATCH ?"}
	args := []interface{}{match}
	if p.RunID != "" {
		where = append(where, "s.run_id = ?")
		args = append(args, p.RunID)
	}
	if p.Category != "" {
		where = append(where, "s.category = ?")
		args = append(args, p.Category)
	}

	query := fmt.Sprintf(`
		SELECT s.run_id, s.seq, s.text, s.label, s.category, s.synthetic, s.split
		FROM samples_fts
		INNER JOIN samples s ON s.rowid = samples_fts.rowid
		WHERE %s
		ORDER BY samples_fts.rank, s.run_id, s.seq
		LIMIT ?`, strings.Join(where, " AND "))
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search samples: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var synthetic int
		var split *string
		if err := rows.Scan(&r.RunID, &r.Seq, &r.Text, &r.Label, &r.Category, &synthetic, &split); err != nil {
			return nil, err
		}
		r.Synthetic = synthetic != 0
		if split != nil {
			r.Split = *split
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ftsQuery quotes each whitespace-separated term so user input is never
// parsed as FTS5 syntax. Terms are implicitly ANDed.
func ftsQuery(q string) string {
	terms := strings.Fields(q)
	for i, term := range terms {
		terms[i] = `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}
