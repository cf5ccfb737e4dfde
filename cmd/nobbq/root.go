package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/WesselBraakman/NoBBQ/internal/config"
	"github.com/WesselBraakman/NoBBQ/internal/llm"
	"github.com/WesselBraakman/NoBBQ/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "nobbq",
	Short: "Norwegian BBQ bias study toolkit",
	Long: `Build and run a Norwegian adaptation of the BBQ bias benchmark.
Fetch the source dataset, sample items per category, translate them,
dispatch prompts to LLM providers, and archive and score the responses.`,
}

func getStudyName() string {
	name, _ := rootCmd.PersistentFlags().GetString("study")
	if name == "" {
		return "study"
	}
	return name
}

func getStorePath() (string, error) {
	return store.GetDefaultDbPath(getStudyName())
}

func openStore() (*store.Store, error) {
	path, err := getStorePath()
	if err != nil {
		return nil, err
	}
	return store.NewStore(path)
}

func initRoot() {
	config.CurrentStudyName = getStudyName()
	config.LoadEnv()
}

func getLogger() *zap.Logger {
	verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// buildProvider resolves the --provider and --model flags against the study
// config and constructs the client.
func buildProvider(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (llm.Provider, string, error) {
	name, _ := cmd.Flags().GetString("provider")
	model, _ := cmd.Flags().GetString("model")
	pc := cfg.ProviderFor(name)
	if model == "" {
		model = pc.Model
	}
	if model == "" {
		// Responses are archived per provider/model, so the default must
		// be resolved here rather than left to the client.
		model = llm.DefaultModel(name)
	}
	p, err := llm.New(ctx, name, llm.Options{
		Model:   model,
		BaseURL: pc.BaseURL,
		Seed:    int(cfg.Seed),
	})
	if err != nil {
		return nil, "", err
	}
	return p, model, nil
}

func getSleep(cmd *cobra.Command, cfg *config.Config) time.Duration {
	ms, _ := cmd.Flags().GetInt("sleep")
	if ms < 0 {
		ms = cfg.SleepMS
	}
	return time.Duration(ms) * time.Millisecond
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("study", "", "Use named study (default: study)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
}
