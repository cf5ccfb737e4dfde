package main

import (
	"fmt"
	"os"
	"time"

	"github.com/WesselBraakman/NoBBQ/internal/prompt"
	"github.com/spf13/cobra"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Assemble prompts from translated items",
	Long: `Build one prompt per sampled item from its translated context and
question. The 'open' style asks the question without showing the answer
options; 'choices' lists the three options and asks for one. Re-running
replaces earlier builds, so run it again after importing review edits.`,
	Run: func(cmd *cobra.Command, args []string) {
		initRoot()
		s, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()

		styleArg, _ := cmd.Flags().GetString("style")
		style, err := prompt.ParseStyle(styleArg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		allowSource, _ := cmd.Flags().GetBool("allow-source")
		category, _ := cmd.Flags().GetString("category")

		items, err := s.SampledItems(category)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(items) == 0 {
			fmt.Println("No sampled items. Run 'nobbq sample' first.")
			return
		}

		built, skipped := 0, 0
		now := time.Now()
		for i := range items {
			text, fromSource, err := prompt.Build(&items[i], style, allowSource)
			if err != nil {
				skipped++
				continue
			}
			// Translated items keep their language even under --allow-source.
			lang := "nb"
			if fromSource {
				lang = "en"
			}
			if err := s.UpsertPrompt(items[i].ID, string(style), lang, text, now); err != nil {
				fmt.Fprintf(os.Stderr, "Error storing prompt for item %d: %v\n", items[i].ID, err)
				os.Exit(1)
			}
			built++
		}
		fmt.Printf("Built %d prompts (style %s)\n", built, style)
		if skipped > 0 {
			fmt.Printf("Skipped %d untranslated items. Run 'nobbq translate' or use --allow-source.\n", skipped)
		}
	},
}

func init() {
	promptsCmd.Flags().String("style", "choices", "Prompt style: open or choices")
	promptsCmd.Flags().Bool("allow-source", false, "Fall back to the untranslated text")
	promptsCmd.Flags().String("category", "", "Only this category")
	rootCmd.AddCommand(promptsCmd)
}
