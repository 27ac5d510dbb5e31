package store

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSearch_Basic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	run := saveTestRun(t, s)

	results, err := s.Search(ctx, SearchParams{Query: "burn"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.RunID != run.ID || r.Category != "burns" {
			t.Errorf("unexpected result %+v", r)
		}
	}

	// All terms must match
	results, err = s.Search(ctx, SearchParams{Query: "burn blister"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Seq != 1 || results[0].Split != "validation" {
		t.Errorf("expected seq 1 in validation, got %+v", results[0])
	}

	// No results
	results, err = s.Search(ctx, SearchParams{Query: "fracture"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0 results, got %d", len(results))
	}
}

func TestSearch_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	first := saveTestRun(t, s)
	saveTestRun(t, s)

	results, err := s.Search(ctx, SearchParams{Query: "cut"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results across runs, got %d", len(results))
	}

	results, err = s.Search(ctx, SearchParams{Query: "cut", RunID: first.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results in one run, got %d", len(results))
	}

	results, err = s.Search(ctx, SearchParams{Query: "cut", Category: "burns"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0 results for category filter, got %d", len(results))
	}

	results, err = s.Search(ctx, SearchParams{Query: "cut", Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected limit 1, got %d", len(results))
	}
}

func TestSearch_SyntheticFlag(t *testing.T) {
	s := newTestStore(t)
	saveTestRun(t, s)

	results, err := s.Search(context.Background(), SearchParams{Query: "urgent"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || !results[0].Synthetic {
		t.Fatalf("expected one synthetic result, got %+v", results)
	}
}

func TestSearch_RemovedRunExcluded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	run := saveTestRun(t, s)

	if err := s.RmRun(ctx, run.ID); err != nil {
		t.Fatal(err)
	}
	results, err := s.Search(ctx, SearchParams{Query: "burn"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0, got %d", len(results))
	}
}

func TestSearch_QuotesSyntax(t *testing.T) {
	s := newTestStore(t)
	saveTestRun(t, s)

	// FTS5 operators in user input are matched literally, not parsed
	results, err := s.Search(context.Background(), SearchParams{Query: `burn" OR blister`})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0 results, got %d", len(results))
	}

	if _, err := s.Search(context.Background(), SearchParams{Query: "   "}); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestFTSQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"burn", `"burn"`},
		{"  burn   blister ", `"burn" "blister"`},
		{`say "hi"`, `"say" """hi"""`},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ftsQuery(tt.in); got != tt.want {
			t.Errorf("ftsQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStats(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	run := saveTestRun(t, s)

	stats, err := s.Stats(ctx, dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Runs != 1 || stats.Samples != 4 || stats.SyntheticSamples != 1 {
		t.Fatalf("unexpected counts %+v", stats)
	}
	if stats.VocabularyTokens != run.VocabSize {
		t.Fatalf("expected %d vocabulary tokens, got %d", run.VocabSize, stats.VocabularyTokens)
	}
	if len(stats.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(stats.Categories))
	}
	if stats.Categories[0].Category != "burns" || stats.Categories[0].Count != 2 {
		t.Fatalf("expected burns first, got %+v", stats.Categories[0])
	}
	if stats.DBSizeBytes == 0 {
		t.Fatal("expected non-zero db size")
	}
}
