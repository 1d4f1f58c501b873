package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <manifest.toml>",
	Short: "Load summary files into the store",
	Long: `Load the summary files listed in a TOML manifest into the chunk
store. Summaries may be plain text or zstd-compressed (.zst).`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.close()

	result, err := app.ingestor.Run(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %d chunks from %d files\n", result.Chunks, result.Files)
	return nil
}
