package main

import (
	"fmt"
	"os"

	"github.com/WesselBraakman/NoBBQ/internal/export"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import reviewed translations from CSV or XLSX",
	Long: `Load a reviewed items file produced by 'nobbq export items' or
'nobbq export review' back into the study. Translated columns overwrite
the machine output; rows with reviewed=1 are marked as reviewed.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initRoot()
		s, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()

		stats, err := export.ImportReviewed(s, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated %d items (%d marked reviewed, %d skipped)\n",
			stats.Updated, stats.Reviewed, stats.Skipped)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
