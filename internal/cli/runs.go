package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs",
		Run:   runRuns,
	}
	runsCmd.Flags().IntP("limit", "l", 20, "Max results")

	rmCmd := &cobra.Command{
		Use:   "rm <run-id>",
		Short: "Delete a stored run",
		Args:  cobra.ExactArgs(1),
		Run:   runRunsRm,
	}

	runsCmd.AddCommand(rmCmd)
	RootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context(), limit)
	if err != nil {
		exitErr("list runs", err)
	}

	if formatFlag == "text" {
		for _, r := range runs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  samples=%d vocab=%d\n",
				r.ID, r.CreatedAt.Local().Format(time.DateTime), r.SampleCount, r.VocabSize)
		}
		return
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "[]")
		return
	}
	printJSON(cmd, runs)
}

func runRunsRm(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.RmRun(cmd.Context(), args[0]); err != nil {
		exitErr("rm", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"run_id":%q}`+"\n", args[0])
}
