package store

import (
	"context"

	"github.com/rcliao/triage-corpus/internal/model"
	"github.com/rcliao/triage-corpus/internal/vocab"
)

// Export is a stored run with its corpus and vocabulary.
type Export struct {
	Run        model.Run
	Corpus     []model.Sample
	Vocabulary *vocab.Vocabulary
}

// ExportRun loads everything stored for a run.
func (s *SQLiteStore) ExportRun(ctx context.Context, id string) (*Export, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	corpus, err := s.LoadCorpus(ctx, CorpusParams{RunID: id})
	if err != nil {
		return nil, err
	}
	v, err := s.LoadVocabulary(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Export{Run: *run, Corpus: corpus, Vocabulary: v}, nil
}

// ImportCorpus stores an externally produced corpus and vocabulary as a new
// run. The corpus is stored unsplit; config records the settings the corpus
// was checked with.
func (s *SQLiteStore) ImportCorpus(ctx context.Context, config string, corpus []model.Sample, v *vocab.Vocabulary, maxLength int) (*model.Run, error) {
	return s.SaveRun(ctx, SaveParams{Config: config, Corpus: corpus, Vocabulary: v, MaxLength: maxLength})
}
