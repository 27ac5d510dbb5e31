package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rcliao/triage-corpus/internal/artifact"
	"github.com/rcliao/triage-corpus/internal/split"
)

func init() {
	cmd := &cobra.Command{
		Use:   "split <corpus.json>",
		Short: "Write train and validation partitions of a corpus file",
		Args:  cobra.ExactArgs(1),
		Run:   runSplit,
	}

	cmd.Flags().Float64("ratio", split.DefaultValidationRatio, "Validation fraction")
	cmd.Flags().Int64("seed", split.DefaultSeed, "Shuffle seed")
	cmd.Flags().StringP("out", "o", "", "Output directory (default: corpus directory)")

	RootCmd.AddCommand(cmd)
}

func runSplit(cmd *cobra.Command, args []string) {
	ratio, _ := cmd.Flags().GetFloat64("ratio")
	seed, _ := cmd.Flags().GetInt64("seed")
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = filepath.Dir(args[0])
	}

	corpus, err := artifact.ReadCorpus(args[0])
	if err != nil {
		exitErr("read corpus", err)
	}

	parts, err := split.Split(corpus, ratio, seed)
	if err != nil {
		exitErr("split", err)
	}

	trainPath := filepath.Join(out, artifact.TrainFile)
	validationPath := filepath.Join(out, artifact.ValidationFile)
	if err := artifact.WriteJSON(trainPath, parts.Train); err != nil {
		exitErr("write train", err)
	}
	if err := artifact.WriteJSON(validationPath, parts.Validation); err != nil {
		exitErr("write validation", err)
	}

	printJSON(cmd, map[string]any{
		"ok":              true,
		"train":           len(parts.Train),
		"validation":      len(parts.Validation),
		"train_path":      trainPath,
		"validation_path": validationPath,
	})
}
