package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/triage-corpus/internal/artifact"
	"github.com/rcliao/triage-corpus/internal/vocab"
)

func init() {
	cmd := &cobra.Command{
		Use:   "vocab <corpus.json>",
		Short: "Build a vocabulary from a corpus file",
		Long:  "Count tokens over a corpus file and print (or write with --out) the ranked token to id map.",
		Args:  cobra.ExactArgs(1),
		Run:   runVocab,
	}

	cmd.Flags().Int("size", vocab.DefaultSize, "Vocabulary size cap, reserved tokens included")
	cmd.Flags().Int("min-frequency", vocab.DefaultMinFrequency, "Minimum token count")
	cmd.Flags().StringP("out", "o", "", "Write vocabulary.json here instead of stdout")

	RootCmd.AddCommand(cmd)
}

func runVocab(cmd *cobra.Command, args []string) {
	size, _ := cmd.Flags().GetInt("size")
	minFreq, _ := cmd.Flags().GetInt("min-frequency")
	out, _ := cmd.Flags().GetString("out")

	corpus, err := artifact.ReadCorpus(args[0])
	if err != nil {
		exitErr("read corpus", err)
	}

	v, err := vocab.Build(corpus, vocab.Options{Size: size, MinFrequency: minFreq})
	if err != nil {
		exitErr("build vocabulary", err)
	}

	if out == "" {
		printJSON(cmd, v)
		return
	}
	if err := artifact.WriteJSON(out, v); err != nil {
		exitErr("write vocabulary", err)
	}
	printJSON(cmd, map[string]any{"ok": true, "out": out, "size": v.Len()})
}
