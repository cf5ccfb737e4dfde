package main

import (
	"fmt"
	"os"

	"github.com/WesselBraakman/NoBBQ/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage study configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Run: func(cmd *cobra.Command, args []string) {
		initRoot()
		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		path, _ := config.GetConfigFilePath()

		fmt.Printf("Config file: %s\n", path)
		fmt.Printf("Sample limit: %d\n", cfg.SampleLimit)
		fmt.Printf("Seed: %d\n", cfg.Seed)
		fmt.Printf("Target language: %s\n", cfg.TargetLang)
		fmt.Printf("Sleep: %dms\n", cfg.SleepMS)
		if len(cfg.Categories) > 0 {
			fmt.Printf("Categories: %v\n", cfg.Categories)
		}
		if len(cfg.Providers) == 0 {
			fmt.Println("No providers configured.")
			return
		}
		fmt.Println("Providers:")
		for name, p := range cfg.Providers {
			line := fmt.Sprintf("- %s", name)
			if p.Model != "" {
				line += fmt.Sprintf(" model=%s", p.Model)
			}
			if p.BaseURL != "" {
				line += fmt.Sprintf(" base-url=%s", p.BaseURL)
			}
			fmt.Println(line)
		}
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the defaults",
	Run: func(cmd *cobra.Command, args []string) {
		initRoot()
		path, err := config.GetConfigFilePath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(os.Stderr, "Config already exists: %s\n", path)
			os.Exit(1)
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		if err := config.SaveConfig(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", path)
	},
}

var configSetProviderCmd = &cobra.Command{
	Use:   "set-provider [name]",
	Short: "Set the model and base URL for a provider",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initRoot()
		name := args[0]
		model, _ := cmd.Flags().GetString("model")
		baseURL, _ := cmd.Flags().GetString("base-url")

		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		p := cfg.Providers[name]
		if model != "" {
			p.Model = model
		}
		if baseURL != "" {
			p.BaseURL = baseURL
		}
		cfg.Providers[name] = p

		if err := config.SaveConfig(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Provider '%s' saved.\n", name)
	},
}

func init() {
	configSetProviderCmd.Flags().String("model", "", "Model name for this provider")
	configSetProviderCmd.Flags().String("base-url", "", "Base URL override")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetProviderCmd)
	rootCmd.AddCommand(configCmd)
}
