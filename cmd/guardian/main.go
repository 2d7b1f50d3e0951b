// Command guardian is the collection maintenance and evaluation CLI. Progress
// goes to stderr; the final result block goes to stdout so a parent process
// can parse it from the first '{'.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/guardianai/guardianai/internal/bootstrap"
	"github.com/guardianai/guardianai/internal/config"
	"github.com/guardianai/guardianai/internal/observability/logging"
)

var (
	flagCollection     string
	flagEmbeddingModel string

	cliLogger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "guardian",
	Short:         "GuardianAI retrieval and safety evaluation pipeline",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagCollection, "collection", "", "Qdrant collection name")
	rootCmd.PersistentFlags().StringVar(&flagEmbeddingModel, "embedding_model", "", "override the configured embedding model")
	_ = rootCmd.MarkPersistentFlagRequired("collection")
}

// newPipeline loads configuration and builds the core against the collection
// named on the command line.
func newPipeline() (*bootstrap.Pipeline, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("load config: %w", err)
	}
	cliLogger = logging.NewStderrLogger("guardian", cfg.LogLevel)
	return bootstrap.NewPipeline(cfg, flagCollection, flagEmbeddingModel, cliLogger), cfg, nil
}

func progress(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
