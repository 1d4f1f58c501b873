package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show chunk store statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.close()

	counts, err := app.store.CountByType(cmd.Context())
	if err != nil {
		return err
	}

	total := 0
	types := make([]string, 0, len(counts))
	for chunkType, count := range counts {
		total += count
		types = append(types, chunkType)
	}
	sort.Strings(types)

	fmt.Printf("Total chunks: %d\n", total)
	for _, chunkType := range types {
		fmt.Printf("  %-16s %d\n", chunkType, counts[chunkType])
	}
	return nil
}
