package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	queryUserID string
	queryJSON   bool
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Run one query through the pipeline",
	Long: `Run a single question through the security gate, retrieval, and
generation, printing the answer and its sources.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVar(&queryUserID, "user", "cli", "User identifier for rate limiting")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "Print the full result as JSON")
}

func runQuery(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.close()

	question := strings.Join(args, " ")
	result, err := app.engine.ProcessQuery(cmd.Context(), question, queryUserID, nil, nil)
	if err != nil {
		return err
	}

	if queryJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	fmt.Println(result.Response)
	if result.Blocked {
		return nil
	}
	if len(result.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, src := range result.Sources {
			fmt.Printf("  - %s (%s, score %.2f)\n", src.ChunkID, src.ChunkType, src.RelevanceScore)
		}
	}
	return nil
}
