package main

import (
	"github.com/spf13/cobra"

	"github.com/guardianai/guardianai/internal/core/domain"
)

var (
	flagEvalText   string
	flagEvalTopK   int
	flagEvalMaxCtx int
	flagEvalRerank bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate text against the indexed policies",
	Long: `Runs the retrieval-grounded safety evaluation and prints the verdict as a
JSON block on stdout. Any pipeline failure yields the conservative
{"safety_level": "not safe"} verdict with exit code 0, so callers can always
rely on the printed JSON.`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVar(&flagEvalText, "text", "", "the text to evaluate")
	evaluateCmd.Flags().IntVar(&flagEvalTopK, "top_k", 5, "candidates to retrieve")
	evaluateCmd.Flags().IntVar(&flagEvalMaxCtx, "max_ctx", 5, "context chunks passed to the judge")
	evaluateCmd.Flags().BoolVar(&flagEvalRerank, "rerank", false, "apply lexical reranking")
	_ = evaluateCmd.MarkFlagRequired("text")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	pipeline, _, err := newPipeline()
	if err != nil {
		return err
	}

	progress("Evaluating text against collection %q", flagCollection)
	report, evalErr := pipeline.EvaluateUC.Evaluate(cmd.Context(), flagEvalText, domain.QueryOptions{
		TopK:   flagEvalTopK,
		MaxCtx: flagEvalMaxCtx,
		Rerank: flagEvalRerank,
	})
	if evalErr != nil {
		cliLogger.Error("evaluation failed, returning fail-safe verdict", "error", evalErr)
	}
	report = domain.FailSafeReport(report, evalErr)

	if report.Degraded {
		progress("Warning: no relevant context found in the database. Evaluation may be unreliable.")
	}
	return printJSON(report)
}
