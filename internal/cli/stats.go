package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/triage-corpus/internal/artifact"
	"github.com/rcliao/triage-corpus/internal/pipeline"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database or corpus statistics",
		Run:   runStats,
	}

	cmd.Flags().String("corpus", "", "Report on a corpus file instead of the database")

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	if path, _ := cmd.Flags().GetString("corpus"); path != "" {
		corpus, err := artifact.ReadCorpus(path)
		if err != nil {
			exitErr("read corpus", err)
		}
		printJSON(cmd, pipeline.Summarize(corpus))
		return
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("stats", err)
	}

	printJSON(cmd, stats)
}
