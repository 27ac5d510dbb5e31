package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rcliao/triage-corpus/internal/artifact"
	"github.com/rcliao/triage-corpus/internal/balance"
	"github.com/rcliao/triage-corpus/internal/pipeline"
	"github.com/rcliao/triage-corpus/internal/tokenize"
	"github.com/rcliao/triage-corpus/internal/vocab"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import <corpus.json>",
		Short: "Store a corpus file as a run",
		Long: "Store an existing corpus file in the dataset database. Labels are checked against the " +
			"taxonomy. Without --vocab a vocabulary is built with the default settings.",
		Args: cobra.ExactArgs(1),
		Run:  runImport,
	}

	cmd.Flags().String("vocab", "", "Vocabulary file")
	cmd.Flags().String("taxonomy", "", "Taxonomy file (default: embedded taxonomy)")
	cmd.Flags().IntP("max-length", "m", tokenize.DefaultMaxLength, "Sequence length recorded with the run")

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	vocabPath, _ := cmd.Flags().GetString("vocab")
	taxPath, _ := cmd.Flags().GetString("taxonomy")
	maxLength, _ := cmd.Flags().GetInt("max-length")

	corpus, err := artifact.ReadCorpus(args[0])
	if err != nil {
		exitErr("read corpus", err)
	}
	cfg := pipeline.DefaultConfig()
	cfg.MaxLength = maxLength
	if taxPath != "" {
		if cfg.Taxonomy, err = filepath.Abs(taxPath); err != nil {
			exitErr("resolve taxonomy path", err)
		}
	}
	tax, err := cfg.LoadTaxonomy()
	if err != nil {
		exitErr("load taxonomy", err)
	}
	if _, err := balance.Count(corpus, tax); err != nil {
		exitErr("check labels", err)
	}

	config, err := cfg.YAML()
	if err != nil {
		exitErr("encode config", err)
	}

	var v *vocab.Vocabulary
	if vocabPath != "" {
		v, err = artifact.ReadVocabulary(vocabPath)
	} else {
		v, err = vocab.Build(corpus, vocab.DefaultOptions())
	}
	if err != nil {
		exitErr("vocabulary", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	run, err := s.ImportCorpus(cmd.Context(), string(config), corpus, v, maxLength)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"run_id":%q,"imported":%d}`+"\n", run.ID, run.SampleCount)
}
