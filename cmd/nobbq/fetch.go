package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/WesselBraakman/NoBBQ/internal/bbq"
	"github.com/WesselBraakman/NoBBQ/internal/config"
	"github.com/WesselBraakman/NoBBQ/internal/store"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [categories...]",
	Short: "Fetch BBQ source data into the study",
	Long: `Download BBQ category files from the upstream repository and load them
into the study database. With no arguments all categories are fetched.
Use --dir to load JSONL files from a local directory instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		initRoot()
		s, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()

		dir, _ := cmd.Flags().GetString("dir")
		if dir != "" {
			mask, _ := cmd.Flags().GetString("mask")
			if err := fetchLocal(s, dir, mask); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		categories := args
		if len(categories) == 0 {
			cfg, err := config.LoadConfig()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
				os.Exit(1)
			}
			categories = cfg.Categories
		}
		if len(categories) == 0 {
			categories = bbq.Categories
		}
		for _, c := range categories {
			if !bbq.IsCategory(c) {
				fmt.Fprintf(os.Stderr, "Unknown category '%s'. Valid: %s\n", c, strings.Join(bbq.Categories, ", "))
				os.Exit(1)
			}
		}

		baseURL, _ := cmd.Flags().GetString("base-url")
		force, _ := cmd.Flags().GetBool("force")
		ctx := context.Background()
		now := time.Now()

		for _, category := range categories {
			records, err := bbq.FetchCategory(ctx, baseURL, category, force)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error fetching %s: %v\n", category, err)
				os.Exit(1)
			}
			added := 0
			for i := range records {
				inserted, err := s.InsertItem(&records[i], now)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error storing %s: %v\n", category, err)
					os.Exit(1)
				}
				if inserted {
					added++
				}
			}
			fmt.Printf("%s: %d records, %d new\n", category, len(records), added)
		}
	},
}

func fetchLocal(s *store.Store, dir, mask string) error {
	paths, err := bbq.GlobFiles(dir, mask)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files matching '%s' under %s", mask, dir)
	}
	now := time.Now()
	for _, path := range paths {
		records, err := bbq.LoadFile(path)
		if err != nil {
			return err
		}
		added := 0
		for i := range records {
			inserted, err := s.InsertItem(&records[i], now)
			if err != nil {
				return err
			}
			if inserted {
				added++
			}
		}
		fmt.Printf("%s: %d records, %d new\n", path, len(records), added)
	}
	return nil
}

func init() {
	fetchCmd.Flags().String("base-url", bbq.DefaultBaseURL, "Base URL for BBQ data files")
	fetchCmd.Flags().Bool("force", false, "Re-download even if cached")
	fetchCmd.Flags().String("dir", "", "Load JSONL files from a local directory")
	fetchCmd.Flags().String("mask", "**/*.jsonl", "File pattern mask for --dir")
	rootCmd.AddCommand(fetchCmd)
}
