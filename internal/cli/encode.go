package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/triage-corpus/internal/artifact"
	"github.com/rcliao/triage-corpus/internal/tokenize"
)

func init() {
	cmd := &cobra.Command{
		Use:   "encode <text...>",
		Short: "Encode one text with a vocabulary",
		Args:  cobra.MinimumNArgs(1),
		Run:   runEncode,
	}

	cmd.Flags().String("vocab", "", "Vocabulary file (required)")
	cmd.Flags().IntP("max-length", "m", tokenize.DefaultMaxLength, "Sequence length")
	cmd.MarkFlagRequired("vocab")

	RootCmd.AddCommand(cmd)
}

func runEncode(cmd *cobra.Command, args []string) {
	vocabPath, _ := cmd.Flags().GetString("vocab")
	maxLength, _ := cmd.Flags().GetInt("max-length")
	text := strings.Join(args, " ")

	v, err := artifact.ReadVocabulary(vocabPath)
	if err != nil {
		exitErr("read vocabulary", err)
	}
	tok, err := tokenize.New(v, maxLength)
	if err != nil {
		exitErr("create tokenizer", err)
	}

	ids := tok.Encode(text)
	if formatFlag == "text" {
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = fmt.Sprint(id)
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, " "))
		return
	}

	printJSON(cmd, map[string]any{
		"text":   text,
		"ids":    ids,
		"tokens": tok.Decode(ids),
	})
}
