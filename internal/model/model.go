// Package model defines the core corpus data types.
package model

import "time"

// Reserved control tokens. Their ids are fixed and shared with the
// downstream training stage.
const (
	PadToken   = "<PAD>"
	UnkToken   = "<UNK>"
	StartToken = "<START>"
	EndToken   = "<END>"

	PadID   = 0
	UnkID   = 1
	StartID = 2
	EndID   = 3
)

// ReservedTokens lists the control tokens in id order.
var ReservedTokens = []string{PadToken, UnkToken, StartToken, EndToken}

// Category is one emergency class of the label taxonomy.
type Category struct {
	ID       int      `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
	Patterns []string `yaml:"patterns" json:"patterns"`
	Symptoms []string `yaml:"symptoms,omitempty" json:"symptoms,omitempty"`
	Examples []string `yaml:"examples,omitempty" json:"examples,omitempty"`
}

// Sample is one labeled text of the corpus.
type Sample struct {
	Text      string `json:"text"`
	Label     int    `json:"label"`
	Category  string `json:"category"`
	Synthetic bool   `json:"synthetic,omitempty"`
}

// TokenizedSample is a fixed-length id sequence with its label.
type TokenizedSample struct {
	IDs   []int `json:"ids"`
	Label int   `json:"label"`
}

// Split is a train/validation partition of a corpus.
type Split struct {
	Train      []Sample `json:"train"`
	Validation []Sample `json:"validation"`
}

// ClassInfo describes the label space for the training stage.
type ClassInfo struct {
	NumClasses  int            `json:"num_classes"`
	ClassNames  []string       `json:"class_names"`
	ClassLabels map[string]int `json:"class_labels"`
}

// Run is a stored pipeline run.
type Run struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Config      string    `json:"config,omitempty"`
	SampleCount int       `json:"sample_count"`
	VocabSize   int       `json:"vocab_size"`
	MaxLength   int       `json:"max_length"`
}

// Split labels used when samples are persisted.
const (
	SplitTrain      = "train"
	SplitValidation = "validation"
)
