package main

import (
	"context"
	"fmt"
	"os"

	"github.com/WesselBraakman/NoBBQ/internal/config"
	"github.com/WesselBraakman/NoBBQ/internal/score"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Classify archived responses against the answer options",
	Long: `Map every unlabeled response to one of the three answer options
(ans0, ans1, ans2) using an LLM classifier, then print the label tally
per category and provider. Responses the classifier cannot place are
labeled 'ukjent'.`,
	Run: func(cmd *cobra.Command, args []string) {
		initRoot()
		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		s, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()

		ctx := context.Background()
		provider, _, err := buildProvider(ctx, cmd, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		batchSize, _ := cmd.Flags().GetInt("batch-size")
		c := score.New(provider, batchSize, getSleep(cmd, cfg), getLogger())
		stats, err := c.Run(ctx, s, func(done, total int) {
			fmt.Printf("\rClassifying %d/%d", done, total)
		})
		fmt.Println()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Labeled %d responses (%d via retry, %d unplaceable)\n",
			stats.Labeled, stats.Fallback, stats.Failed)

		tally, err := s.TallyLabels()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error tallying labels: %v\n", err)
			os.Exit(1)
		}
		if len(tally) == 0 {
			return
		}
		fmt.Println()
		fmt.Println("Labels")
		for _, t := range tally {
			fmt.Printf("  %-28s %s/%s %-8s %d\n", t.Category, t.Provider, t.Model, t.Label, t.Count)
		}
	},
}

func init() {
	scoreCmd.Flags().String("provider", "ollama", "Classifier provider: openai, gemini, or ollama")
	scoreCmd.Flags().String("model", "", "Classifier model (default from config or provider default)")
	scoreCmd.Flags().Int("batch-size", score.DefaultBatchSize, "Responses per classifier call")
	scoreCmd.Flags().Int("sleep", -1, "Milliseconds to wait between requests (default from config)")
	rootCmd.AddCommand(scoreCmd)
}
