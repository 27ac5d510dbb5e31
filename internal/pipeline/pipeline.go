// Package pipeline runs the corpus stages end to end: synthesis, balancing,
// vocabulary, splitting and encoding.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rcliao/triage-corpus/internal/artifact"
	"github.com/rcliao/triage-corpus/internal/balance"
	"github.com/rcliao/triage-corpus/internal/model"
	"github.com/rcliao/triage-corpus/internal/split"
	"github.com/rcliao/triage-corpus/internal/synth"
	"github.com/rcliao/triage-corpus/internal/taxonomy"
	"github.com/rcliao/triage-corpus/internal/tokenize"
	"github.com/rcliao/triage-corpus/internal/vocab"
)

// Result holds every output of a run.
type Result struct {
	Config    Config
	Taxonomy  *taxonomy.Taxonomy
	SynthSeed int64

	Raw     []model.Sample
	Corpus  []model.Sample
	Balance balance.Report

	Vocabulary          *vocab.Vocabulary
	Split               model.Split
	// Assignments names the partition of each Corpus position.
	Assignments         []string
	TrainSequences      []model.TokenizedSample
	ValidationSequences []model.TokenizedSample
	ClassInfo           model.ClassInfo
	Report              Report
}

// Bundle converts the result into its artifact set.
func (r *Result) Bundle() artifact.Bundle {
	return artifact.Bundle{
		Corpus:              r.Corpus,
		Vocabulary:          r.Vocabulary,
		ClassInfo:           r.ClassInfo,
		Split:               r.Split,
		TrainSequences:      r.TrainSequences,
		ValidationSequences: r.ValidationSequences,
		Report:              r.Report,
	}
}

// Runner executes the pipeline.
type Runner struct {
	logger *slog.Logger
}

// NewRunner creates a runner. A nil logger uses slog.Default.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger}
}

// Run executes all stages against tax. The result is complete or an error
// is returned; no partial output is produced.
func (r *Runner) Run(ctx context.Context, cfg Config, tax *taxonomy.Taxonomy) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.SynthSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	raw, err := r.Synthesize(ctx, cfg, tax, seed)
	if err != nil {
		return nil, err
	}
	r.logger.Info("synthesized raw corpus", slog.Int("samples", len(raw)), slog.Int64("seed", seed))

	corpus, balanced, err := balance.New(cfg.BalanceCap).Balance(raw, tax)
	if err != nil {
		return nil, fmt.Errorf("balance corpus: %w", err)
	}
	r.logger.Info("balanced corpus", slog.Int("target", balanced.Target), slog.Int("samples", len(corpus)))

	v, err := vocab.Build(corpus, vocab.Options{Size: cfg.VocabSize, MinFrequency: cfg.MinFrequency})
	if err != nil {
		return nil, fmt.Errorf("build vocabulary: %w", err)
	}
	r.logger.Info("built vocabulary", slog.Int("size", v.Len()))

	parts, err := split.Split(corpus, cfg.ValidationRatio, cfg.SplitSeed)
	if err != nil {
		return nil, fmt.Errorf("split corpus: %w", err)
	}
	assignments, err := split.Assign(len(corpus), cfg.ValidationRatio, cfg.SplitSeed)
	if err != nil {
		return nil, fmt.Errorf("split corpus: %w", err)
	}
	r.logger.Info("split corpus", slog.Int("train", len(parts.Train)), slog.Int("validation", len(parts.Validation)))

	tok, err := tokenize.New(v, cfg.MaxLength)
	if err != nil {
		return nil, fmt.Errorf("create tokenizer: %w", err)
	}

	return &Result{
		Config:              cfg,
		Taxonomy:            tax,
		SynthSeed:           seed,
		Raw:                 raw,
		Corpus:              corpus,
		Balance:             balanced,
		Vocabulary:          v,
		Split:               parts,
		Assignments:         assignments,
		TrainSequences:      tok.EncodeCorpus(parts.Train),
		ValidationSequences: tok.EncodeCorpus(parts.Validation),
		ClassInfo:           tax.ClassInfo(),
		Report:              Summarize(corpus),
	}, nil
}

// Synthesize builds the raw corpus. Categories are generated in parallel,
// each with its own synthesizer seeded from seed and the category id, and
// merged back in label order.
func (r *Runner) Synthesize(ctx context.Context, cfg Config, tax *taxonomy.Taxonomy, seed int64) ([]model.Sample, error) {
	categories := tax.Categories()
	perCategory := make([][]model.Sample, len(categories))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for i, c := range categories {
		i, c := i, c // per-iteration copy (Go 1.21 loop semantics)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			samples, err := categoryCorpus(cfg, c, seed+int64(c.ID))
			if err != nil {
				return fmt.Errorf("synthesize %s: %w", c.Name, err)
			}
			perCategory[i] = samples
			r.logger.Debug("synthesized category", slog.String("category", c.Name), slog.Int("samples", len(samples)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, samples := range perCategory {
		total += len(samples)
	}
	raw := make([]model.Sample, 0, total)
	for _, samples := range perCategory {
		raw = append(raw, samples...)
	}
	return raw, nil
}

// categoryCorpus returns examples, keyword variations and generated strings
// for one category, in that order.
func categoryCorpus(cfg Config, c model.Category, seed int64) ([]model.Sample, error) {
	if err := synth.CheckCategory(c); err != nil {
		return nil, err
	}
	var samples []model.Sample
	if cfg.IncludeExamples {
		samples = append(samples, synth.Examples(c)...)
	}
	if cfg.IncludeVariations {
		samples = append(samples, synth.KeywordVariations(c)...)
	}
	generated, err := synth.NewSeeded(seed).GenerateSamples(c, cfg.SamplesPerCategory)
	if err != nil {
		return nil, err
	}
	return append(samples, generated...), nil
}
