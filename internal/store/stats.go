package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath           string          `json:"db_path"`
	DBSizeBytes      int64           `json:"db_size_bytes"`
	Runs             int             `json:"runs"`
	Samples          int             `json:"samples"`
	SyntheticSamples int             `json:"synthetic_samples"`
	VocabularyTokens int             `json:"vocabulary_tokens"`
	Categories       []CategoryStats `json:"categories"`
}

// CategoryStats holds per-category sample counts across all runs.
type CategoryStats struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(*) FROM runs`, &st.Runs},
		{`SELECT COUNT(*) FROM samples`, &st.Samples},
		{`SELECT COUNT(*) FROM samples WHERE synthetic = 1`, &st.SyntheticSamples},
		{`SELECT COUNT(*) FROM vocabulary`, &st.VocabularyTokens},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return st, err
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COUNT(*) AS cnt
		FROM samples
		GROUP BY category ORDER BY cnt DESC, category`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var cs CategoryStats
		if err := rows.Scan(&cs.Category, &cs.Count); err != nil {
			return st, err
		}
		st.Categories = append(st.Categories, cs)
	}

	return st, rows.Err()
}
