package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Show the active category taxonomy",
		Run:   runTaxonomy,
	}

	cmd.Flags().String("taxonomy", "", "Taxonomy file (default: embedded taxonomy)")
	cmd.Flags().Bool("class-info", false, "Print only the class info document")

	RootCmd.AddCommand(cmd)
}

type taxonomyEntry struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Keywords int    `json:"keywords"`
	Patterns int    `json:"patterns"`
	Symptoms int    `json:"symptoms"`
	Examples int    `json:"examples"`
}

func runTaxonomy(cmd *cobra.Command, args []string) {
	path, _ := cmd.Flags().GetString("taxonomy")
	classInfo, _ := cmd.Flags().GetBool("class-info")

	tax, err := loadTaxonomy(path)
	if err != nil {
		exitErr("load taxonomy", err)
	}

	if classInfo {
		printJSON(cmd, tax.ClassInfo())
		return
	}

	entries := make([]taxonomyEntry, 0, tax.CategoryCount())
	for _, c := range tax.Categories() {
		entries = append(entries, taxonomyEntry{
			ID:       c.ID,
			Name:     c.Name,
			Keywords: len(c.Keywords),
			Patterns: len(c.Patterns),
			Symptoms: len(c.Symptoms),
			Examples: len(c.Examples),
		})
	}

	if formatFlag == "text" {
		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%2d  %-20s keywords=%d patterns=%d symptoms=%d examples=%d\n",
				e.ID, e.Name, e.Keywords, e.Patterns, e.Symptoms, e.Examples)
		}
		return
	}
	printJSON(cmd, entries)
}
