package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/triage-corpus/internal/artifact"
	"github.com/rcliao/triage-corpus/internal/pipeline"
	"github.com/rcliao/triage-corpus/internal/split"
	"github.com/rcliao/triage-corpus/internal/tokenize"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Write the artifacts of a stored run",
		Long: "Rebuild the artifact files of a stored run. The partitions are recomputed from the " +
			"stored split settings, so they match the original run.",
		Args: cobra.ExactArgs(1),
		Run:  runExport,
	}

	cmd.Flags().StringP("out", "o", "", "Output directory (required)")
	cmd.MarkFlagRequired("out")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	out, _ := cmd.Flags().GetString("out")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	exp, err := s.ExportRun(cmd.Context(), args[0])
	if err != nil {
		exitErr("export", err)
	}

	cfg := pipeline.DefaultConfig()
	if exp.Run.Config != "" {
		if cfg, err = pipeline.ParseConfig([]byte(exp.Run.Config)); err != nil {
			exitErr("parse stored config", err)
		}
	}
	tax, err := cfg.LoadTaxonomy()
	if err != nil {
		exitErr("load taxonomy", err)
	}

	parts, err := split.Split(exp.Corpus, cfg.ValidationRatio, cfg.SplitSeed)
	if err != nil {
		exitErr("split", err)
	}
	tok, err := tokenize.New(exp.Vocabulary, exp.Run.MaxLength)
	if err != nil {
		exitErr("create tokenizer", err)
	}

	paths, err := artifact.WriteBundle(out, artifact.Bundle{
		Corpus:              exp.Corpus,
		Vocabulary:          exp.Vocabulary,
		ClassInfo:           tax.ClassInfo(),
		Split:               parts,
		TrainSequences:      tok.EncodeCorpus(parts.Train),
		ValidationSequences: tok.EncodeCorpus(parts.Validation),
		Report:              pipeline.Summarize(exp.Corpus),
	})
	if err != nil {
		exitErr("write artifacts", err)
	}

	printJSON(cmd, map[string]any{"ok": true, "run_id": exp.Run.ID, "out": out, "files": paths})
}
