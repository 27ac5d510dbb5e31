package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/triage-corpus/internal/model"
	"github.com/rcliao/triage-corpus/internal/vocab"
)

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id           TEXT PRIMARY KEY,
		created_at   TEXT NOT NULL,
		config       TEXT,
		sample_count INTEGER NOT NULL,
		vocab_size   INTEGER NOT NULL,
		max_length   INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);

	CREATE TABLE IF NOT EXISTS samples (
		id        TEXT PRIMARY KEY,
		run_id    TEXT NOT NULL REFERENCES runs(id),
		seq       INTEGER NOT NULL,
		text      TEXT NOT NULL,
		label     INTEGER NOT NULL,
		category  TEXT NOT NULL,
		synthetic INTEGER NOT NULL DEFAULT 0,
		split     TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_samples_run ON samples(run_id, seq);
	CREATE INDEX IF NOT EXISTS idx_samples_category ON samples(run_id, category);

	CREATE TABLE IF NOT EXISTS vocabulary (
		run_id   TEXT NOT NULL REFERENCES runs(id),
		token    TEXT NOT NULL,
		token_id INTEGER NOT NULL,
		PRIMARY KEY (run_id, token_id)
	);

	CREATE VIRTUAL TABLE IF NOT EXISTS samples_fts USING fts5(
		text,
		content=samples,
		content_rowid=rowid
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// FTS5 triggers for automatic sync
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS samples_ai AFTER INSERT ON samples BEGIN
			INSERT INTO samples_fts(rowid, text) VALUES (new.rowid, new.text);
		END`,
		`CREATE TRIGGER IF NOT EXISTS samples_ad AFTER DELETE ON samples BEGIN
			INSERT INTO samples_fts(samples_fts, rowid, text) VALUES('delete', old.rowid, old.text);
		END`,
		`CREATE TRIGGER IF NOT EXISTS samples_au AFTER UPDATE ON samples BEGIN
			INSERT INTO samples_fts(samples_fts, rowid, text) VALUES('delete', old.rowid, old.text);
			INSERT INTO samples_fts(rowid, text) VALUES (new.rowid, new.text);
		END`,
	}
	for _, trigger := range triggers {
		if _, err := s.db.Exec(trigger); err != nil {
			return fmt.Errorf("create fts trigger: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, p SaveParams) (*model.Run, error) {
	if p.Vocabulary == nil {
		return nil, fmt.Errorf("save run: vocabulary is required")
	}
	if len(p.Splits) > 0 && len(p.Splits) != len(p.Corpus) {
		return nil, fmt.Errorf("save run: %d split labels for %d samples", len(p.Splits), len(p.Corpus))
	}

	now := time.Now().UTC()
	run := &model.Run{
		ID:          s.newID(),
		CreatedAt:   now,
		Config:      p.Config,
		SampleCount: len(p.Corpus),
		VocabSize:   p.Vocabulary.Len(),
		MaxLength:   p.MaxLength,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, config, sample_count, vocab_size, max_length)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, now.Format(timeLayout), nullString(p.Config), run.SampleCount, run.VocabSize, run.MaxLength)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	sampleStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO samples (id, run_id, seq, text, label, category, synthetic, split)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare sample insert: %w", err)
	}
	defer sampleStmt.Close()

	for i, sample := range p.Corpus {
		var split *string
		if len(p.Splits) > 0 {
			split = &p.Splits[i]
		}
		_, err = sampleStmt.ExecContext(ctx,
			s.newID(), run.ID, i, sample.Text, sample.Label, sample.Category, boolInt(sample.Synthetic), split)
		if err != nil {
			return nil, fmt.Errorf("insert sample %d: %w", i, err)
		}
	}

	vocabStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO vocabulary (run_id, token, token_id) VALUES (?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare vocabulary insert: %w", err)
	}
	defer vocabStmt.Close()

	for id, token := range p.Vocabulary.Tokens() {
		if _, err := vocabStmt.ExecContext(ctx, run.ID, token, id); err != nil {
			return nil, fmt.Errorf("insert token %q: %w", token, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, config, sample_count, vocab_size, max_length
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, config, sample_count, vocab_size, max_length
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) LoadCorpus(ctx context.Context, p CorpusParams) ([]model.Sample, error) {
	if _, err := s.GetRun(ctx, p.RunID); err != nil {
		return nil, err
	}

	query := `SELECT text, label, category, synthetic FROM samples WHERE run_id = ?`
	args := []interface{}{p.RunID}
	if p.Split != "" {
		query += ` AND split = ?`
		args = append(args, p.Split)
	}
	query += ` ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	corpus := []model.Sample{}
	for rows.Next() {
		var sample model.Sample
		var synthetic int
		if err := rows.Scan(&sample.Text, &sample.Label, &sample.Category, &synthetic); err != nil {
			return nil, err
		}
		sample.Synthetic = synthetic != 0
		corpus = append(corpus, sample)
	}
	return corpus, rows.Err()
}

func (s *SQLiteStore) LoadVocabulary(ctx context.Context, runID string) (*vocab.Vocabulary, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT token, token_id FROM vocabulary WHERE run_id = ? ORDER BY token_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := map[string]int{}
	for rows.Next() {
		var token string
		var id int
		if err := rows.Scan(&token, &id); err != nil {
			return nil, err
		}
		m[token] = id
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	v, err := vocab.FromMap(m)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary %s: %w", runID, err)
	}
	return v, nil
}

func (s *SQLiteStore) RmRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	// children first, foreign keys are enforced
	for _, q := range []string{
		`DELETE FROM samples WHERE run_id = ?`,
		`DELETE FROM vocabulary WHERE run_id = ?`,
		`DELETE FROM runs WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("delete run %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (model.Run, error) {
	var run model.Run
	var createdAt string
	var config sql.NullString

	err := row.Scan(&run.ID, &createdAt, &config, &run.SampleCount, &run.VocabSize, &run.MaxLength)
	if err != nil {
		return run, err
	}
	run.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	if config.Valid {
		run.Config = config.String
	}
	return run, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
