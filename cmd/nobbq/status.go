package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show study progress",
	Run: func(cmd *cobra.Command, args []string) {
		initRoot()
		s, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()

		st, err := s.GetStatus()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting status: %v\n", err)
			os.Exit(1)
		}

		var size int64
		if fi, err := os.Stat(st.DBPath); err == nil {
			size = fi.Size()
		}

		fmt.Println("NoBBQ Status")
		fmt.Println()
		fmt.Println("Study:", st.DBPath)
		fmt.Println("Size:", formatBytes(size))
		fmt.Println()
		fmt.Printf("Items:   %d\n", st.ItemCount)
		fmt.Printf("Prompts: %d\n\n", st.PromptCount)

		fmt.Println("Categories")
		if len(st.Categories) == 0 {
			fmt.Println("  No items. Run 'nobbq fetch' to load BBQ data.")
			return
		}
		for _, c := range st.Categories {
			fmt.Printf("  %s\n", c.Name)
			fmt.Printf("    Items:      %d\n", c.ItemCount)
			fmt.Printf("    Sampled:    %d\n", c.Sampled)
			fmt.Printf("    Translated: %d\n", c.Translated)
			fmt.Printf("    Reviewed:   %d\n", c.Reviewed)
		}

		if len(st.Providers) == 0 {
			return
		}
		fmt.Println()
		fmt.Println("Providers")
		for _, p := range st.Providers {
			fmt.Printf("  %s/%s\n", p.Provider, p.Model)
			fmt.Printf("    Answered: %d\n", p.Answered)
			fmt.Printf("    Failed:   %d\n", p.Failed)
			fmt.Printf("    Labeled:  %d\n", p.Labeled)
		}
	},
}

func formatBytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	if n < 1024*1024 {
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	}
	if n < 1024*1024*1024 {
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
	return fmt.Sprintf("%.1f GB", float64(n)/(1024*1024*1024))
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
