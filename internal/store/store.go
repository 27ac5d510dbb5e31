// Package store persists pipeline runs in a SQLite dataset database.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/triage-corpus/internal/model"
	"github.com/rcliao/triage-corpus/internal/vocab"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// SaveParams holds everything persisted for one run.
type SaveParams struct {
	Config     string
	Corpus     []model.Sample
	Splits     []string // partition per corpus position; empty means unsplit
	Vocabulary *vocab.Vocabulary
	MaxLength  int
}

// CorpusParams selects stored samples.
type CorpusParams struct {
	RunID string
	Split string // "" for the whole corpus
}

// Store defines the dataset storage interface.
type Store interface {
	// SaveRun stores a run in a single transaction.
	SaveRun(ctx context.Context, p SaveParams) (*model.Run, error)

	// GetRun returns the run header.
	GetRun(ctx context.Context, id string) (*model.Run, error)

	// ListRuns lists runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	// LoadCorpus returns a run's samples in their original order.
	LoadCorpus(ctx context.Context, p CorpusParams) ([]model.Sample, error)

	// LoadVocabulary returns a run's vocabulary.
	LoadVocabulary(ctx context.Context, runID string) (*vocab.Vocabulary, error)

	// RmRun deletes a run and everything stored with it.
	RmRun(ctx context.Context, id string) error

	// Close closes the store.
	Close() error
}
