package main

import (
	"context"
	"fmt"
	"os"

	"github.com/WesselBraakman/NoBBQ/internal/config"
	"github.com/WesselBraakman/NoBBQ/internal/translate"
	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate sampled items",
	Long: `Translate the context, question, and answer options of every sampled
item that has no translation yet. Items that already carry a translation
are left alone, so interrupted runs can simply be restarted.`,
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

		tr := translate.New(provider, cfg.TargetLang, getSleep(cmd, cfg), getLogger())
		stats, err := tr.Run(ctx, s, func(done, total int) {
			fmt.Printf("\rTranslating %d/%d", done, total)
		})
		fmt.Println()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Translated %d items (%d failed)\n", stats.Translated, stats.Failed)
	},
}

func init() {
	translateCmd.Flags().String("provider", "openai", "Provider: openai, gemini, or ollama")
	translateCmd.Flags().String("model", "", "Model name (default from config or provider default)")
	translateCmd.Flags().Int("sleep", -1, "Milliseconds to wait between requests (default from config)")
	rootCmd.AddCommand(translateCmd)
}
