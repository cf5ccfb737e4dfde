package main

import (
	"fmt"
	"os"

	"github.com/WesselBraakman/NoBBQ/internal/export"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export study data",
}

var exportItemsCmd = &cobra.Command{
	Use:   "items [file.csv]",
	Short: "Export sampled items with translations to CSV",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initRoot()
		s, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()

		path := "items.csv"
		if len(args) > 0 {
			path = args[0]
		}
		category, _ := cmd.Flags().GetString("category")
		n, err := export.ItemsCSV(s, category, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d items to %s\n", n, path)
	},
}

var exportResponsesCmd = &cobra.Command{
	Use:   "responses [file.csv]",
	Short: "Export archived responses with labels to CSV",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initRoot()
		s, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()

		path := "responses.csv"
		if len(args) > 0 {
			path = args[0]
		}
		n, err := export.ResponsesCSV(s, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d responses to %s\n", n, path)
	},
}

var exportReviewCmd = &cobra.Command{
	Use:   "review [file.xlsx]",
	Short: "Export a review workbook (items and responses)",
	Long: `Write an Excel workbook with the sampled items and their translations
on one sheet and the archived responses on another. Edit the translated
columns, set reviewed=1, then load it back with 'nobbq import'.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initRoot()
		s, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()

		path := "review.xlsx"
		if len(args) > 0 {
			path = args[0]
		}
		category, _ := cmd.Flags().GetString("category")
		n, err := export.StudyXLSX(s, category, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d items to %s\n", n, path)
	},
}

var exportDatasetCmd = &cobra.Command{
	Use:   "dataset [file.jsonl]",
	Short: "Export the translated dataset as JSONL",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initRoot()
		s, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()

		path := "dataset.jsonl"
		if len(args) > 0 {
			path = args[0]
		}
		all, _ := cmd.Flags().GetBool("all")
		n, err := export.DatasetJSONL(s, path, !all)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d records to %s\n", n, path)
	},
}

func init() {
	exportItemsCmd.Flags().String("category", "", "Only this category")
	exportReviewCmd.Flags().String("category", "", "Only this category")
	exportDatasetCmd.Flags().Bool("all", false, "Include translated items that were not reviewed")

	exportCmd.AddCommand(exportItemsCmd)
	exportCmd.AddCommand(exportResponsesCmd)
	exportCmd.AddCommand(exportReviewCmd)
	exportCmd.AddCommand(exportDatasetCmd)
	rootCmd.AddCommand(exportCmd)
}
