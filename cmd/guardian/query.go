package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guardianai/guardianai/internal/core/domain"
)

var (
	flagQuery       string
	flagTopK        int
	flagMaxCtx      int
	flagRerank      bool
	flagShowContext bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Answer a question grounded in the indexed collection",
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "question to answer")
	queryCmd.Flags().IntVar(&flagTopK, "top_k", 8, "candidates to retrieve")
	queryCmd.Flags().IntVar(&flagMaxCtx, "max_ctx", 4, "context chunks passed to the model")
	queryCmd.Flags().BoolVar(&flagRerank, "rerank", false, "apply lexical reranking")
	queryCmd.Flags().BoolVar(&flagShowContext, "show_context", false, "print retrieved contexts after the answer")
	_ = queryCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, _ []string) error {
	pipeline, _, err := newPipeline()
	if err != nil {
		return err
	}

	progress("Searching in collection %q", flagCollection)
	answer, err := pipeline.QueryUC.Answer(cmd.Context(), flagQuery, domain.QueryOptions{
		TopK:   flagTopK,
		MaxCtx: flagMaxCtx,
		Rerank: flagRerank,
	})
	if err != nil {
		return err
	}

	fmt.Println("\n=== Answer ===")
	fmt.Println()
	fmt.Println(answer.Text)

	if flagShowContext {
		fmt.Println("\n=== Top Contexts ===")
		fmt.Println()
		for i, src := range answer.Sources {
			fmt.Printf("#%d score=%.4f src=%s#%d\n", i+1, src.Score, src.Source, src.ChunkIndex)
			fmt.Println(truncateText(src.Text, 500))
			fmt.Println()
		}
	}
	return nil
}

func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
