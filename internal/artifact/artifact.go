// Package artifact reads and writes the files exchanged with the training
// and export stages.
package artifact

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rcliao/triage-corpus/internal/model"
	"github.com/rcliao/triage-corpus/internal/vocab"
)

// File names inside an output directory.
const (
	CorpusFile              = "medical_training_data.json"
	VocabularyFile          = "vocabulary.json"
	ClassInfoFile           = "class_info.json"
	TrainFile               = "train_data.json"
	ValidationFile          = "validation_data.json"
	TrainSequencesFile      = "train_sequences.jsonl"
	ValidationSequencesFile = "validation_sequences.jsonl"
	ReportFile              = "report.json"
)

// Bundle is the full artifact set of one pipeline run.
type Bundle struct {
	Corpus              []model.Sample
	Vocabulary          *vocab.Vocabulary
	ClassInfo           model.ClassInfo
	Split               model.Split
	TrainSequences      []model.TokenizedSample
	ValidationSequences []model.TokenizedSample
	Report              any
}

// WriteBundle writes every artifact of b into dir and returns the written
// paths. A nil Report is skipped.
func WriteBundle(dir string, b Bundle) ([]string, error) {
	type job struct {
		name  string
		write func(path string) error
	}
	jobs := []job{
		{CorpusFile, func(p string) error { return WriteJSON(p, nonNil(b.Corpus)) }},
		{VocabularyFile, func(p string) error { return WriteJSON(p, b.Vocabulary) }},
		{ClassInfoFile, func(p string) error { return WriteJSON(p, b.ClassInfo) }},
		{TrainFile, func(p string) error { return WriteJSON(p, nonNil(b.Split.Train)) }},
		{ValidationFile, func(p string) error { return WriteJSON(p, nonNil(b.Split.Validation)) }},
		{TrainSequencesFile, func(p string) error { return WriteSequences(p, b.TrainSequences) }},
		{ValidationSequencesFile, func(p string) error { return WriteSequences(p, b.ValidationSequences) }},
	}
	if b.Report != nil {
		jobs = append(jobs, job{ReportFile, func(p string) error { return WriteJSON(p, b.Report) }})
	}
	if b.Vocabulary == nil {
		return nil, fmt.Errorf("write bundle: vocabulary is required")
	}

	paths := make([]string, 0, len(jobs))
	for _, j := range jobs {
		path := filepath.Join(dir, j.name)
		if err := j.write(path); err != nil {
			return paths, fmt.Errorf("write %s: %w", j.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteJSON writes an indented JSON document. HTML characters are kept
// literal so reserved tokens read as "<PAD>".
func WriteJSON(path string, value any) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// WriteSequences writes tokenized samples as JSONL.
func WriteSequences(path string, rows []model.TokenizedSample) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create sequences: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	for _, row := range rows {
		if err := encoder.Encode(row); err != nil {
			return fmt.Errorf("encode sequence row: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush sequences: %w", err)
	}
	return file.Close()
}

// ReadSequences reads a JSONL sequence file.
func ReadSequences(path string) ([]model.TokenizedSample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sequences: %w", err)
	}
	defer file.Close()

	var rows []model.TokenizedSample
	dec := json.NewDecoder(bufio.NewReader(file))
	for dec.More() {
		var row model.TokenizedSample
		if err := dec.Decode(&row); err != nil {
			return nil, fmt.Errorf("parse sequence row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadCorpus reads a corpus (or partition) file.
func ReadCorpus(path string) ([]model.Sample, error) {
	var corpus []model.Sample
	if err := readJSON(path, &corpus); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return corpus, nil
}

// ReadVocabulary reads and validates a vocabulary file.
func ReadVocabulary(path string) (*vocab.Vocabulary, error) {
	var v vocab.Vocabulary
	if err := readJSON(path, &v); err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return &v, nil
}

// ReadClassInfo reads a class-info file.
func ReadClassInfo(path string) (model.ClassInfo, error) {
	var info model.ClassInfo
	if err := readJSON(path, &info); err != nil {
		return model.ClassInfo{}, fmt.Errorf("read class info: %w", err)
	}
	return info, nil
}

func readJSON(path string, dst any) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(content, dst); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

func nonNil(samples []model.Sample) []model.Sample {
	if samples == nil {
		return []model.Sample{}
	}
	return samples
}
