package main

import (
	"fmt"
	"os"

	"github.com/WesselBraakman/NoBBQ/internal/config"
	"github.com/WesselBraakman/NoBBQ/internal/sampler"
	"github.com/spf13/cobra"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Sample items per category",
	Long: `Mark up to the limit of unique context/question pairs per category for
the study. Sampling is seeded and idempotent: re-running keeps earlier
picks and only tops up to the limit.`,
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

		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			limit = cfg.SampleLimit
		}
		seed, _ := cmd.Flags().GetInt64("seed")
		if !cmd.Flags().Changed("seed") {
			seed = cfg.Seed
		}

		var categories []string
		if category, _ := cmd.Flags().GetString("category"); category != "" {
			categories = []string{category}
		} else {
			categories, err = s.Categories()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error listing categories: %v\n", err)
				os.Exit(1)
			}
		}
		if len(categories) == 0 {
			fmt.Println("No items in the study. Run 'nobbq fetch' first.")
			return
		}

		for _, category := range categories {
			res, err := sampler.Apply(s, category, limit, seed)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error sampling %s: %v\n", category, err)
				os.Exit(1)
			}
			fmt.Printf("%s: %d sampled (%d new, %d unique pairs available)\n",
				res.Category, res.Already+res.Picked, res.Picked, res.Unique)
		}
	},
}

func init() {
	sampleCmd.Flags().Int("limit", 0, "Max unique pairs per category (default from config)")
	sampleCmd.Flags().Int64("seed", config.DefaultSeed, "Random seed for reproducible sampling")
	sampleCmd.Flags().String("category", "", "Sample only this category")
	rootCmd.AddCommand(sampleCmd)
}
