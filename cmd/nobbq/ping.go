package main

import (
	"context"
	"fmt"
	"os"

	"github.com/WesselBraakman/NoBBQ/internal/config"
	"github.com/WesselBraakman/NoBBQ/internal/llm"
	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check provider connectivity and credentials",
	Run: func(cmd *cobra.Command, args []string) {
		initRoot()
		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		ctx := context.Background()
		provider, model, err := buildProvider(ctx, cmd, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		p, ok := provider.(llm.Pinger)
		if !ok {
			fmt.Printf("%s: no ping support\n", provider.Name())
			return
		}
		if err := p.Ping(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", provider.Name(), err)
			os.Exit(1)
		}
		if model == "" {
			fmt.Printf("%s: ok\n", provider.Name())
		} else {
			fmt.Printf("%s (%s): ok\n", provider.Name(), model)
		}
	},
}

func init() {
	pingCmd.Flags().String("provider", "openai", "Provider: openai, gemini, or ollama")
	pingCmd.Flags().String("model", "", "Model name (default from config or provider default)")
	rootCmd.AddCommand(pingCmd)
}
