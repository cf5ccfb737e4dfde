package main

import (
	"context"
	"fmt"
	"os"

	"github.com/WesselBraakman/NoBBQ/internal/config"
	"github.com/WesselBraakman/NoBBQ/internal/runner"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Dispatch pending prompts to a provider",
	Long: `Send every prompt that has no archived answer for the chosen
provider/model pair and store the responses. Failed prompts keep their
error and are retried on the next run; answered prompts are never
re-sent.`,
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
		provider, model, err := buildProvider(ctx, cmd, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		r := runner.New(s, provider, model, getLogger())
		r.Sleep = getSleep(cmd, cfg)
		r.Concurrency, _ = cmd.Flags().GetInt("concurrency")
		r.Limit, _ = cmd.Flags().GetInt("limit")

		stats, err := r.Run(ctx, func(done, total int) {
			fmt.Printf("\rDispatching %d/%d", done, total)
		})
		fmt.Println()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if stats.Total == 0 {
			fmt.Println("Nothing pending for this provider/model.")
			return
		}
		fmt.Printf("Run %s: %d answered, %d failed, %d empty (of %d)\n",
			stats.RunID, stats.Answered, stats.Failed, stats.Empty, stats.Total)
	},
}

func init() {
	runCmd.Flags().String("provider", "openai", "Provider: openai, gemini, or ollama")
	runCmd.Flags().String("model", "", "Model name (default from config or provider default)")
	runCmd.Flags().Int("sleep", -1, "Milliseconds to wait between requests (default from config)")
	runCmd.Flags().Int("concurrency", 1, "Parallel requests")
	runCmd.Flags().Int("limit", 0, "Stop after this many prompts (0 = all)")
	rootCmd.AddCommand(runCmd)
}
