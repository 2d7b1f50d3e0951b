// Command guardian-mcp exposes the safety evaluator as an MCP stdio tool.
// Logs go to stderr; stdout carries the MCP protocol stream.
package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"

	mcpadapter "github.com/guardianai/guardianai/internal/adapters/mcp"
	"github.com/guardianai/guardianai/internal/bootstrap"
	"github.com/guardianai/guardianai/internal/config"
	"github.com/guardianai/guardianai/internal/core/domain"
	"github.com/guardianai/guardianai/internal/core/ports"
	"github.com/guardianai/guardianai/internal/infrastructure/backend"
	"github.com/guardianai/guardianai/internal/observability/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewStderrLogger("guardian-mcp", cfg.LogLevel)

	evalOpts := domain.QueryOptions{
		TopK:   cfg.EvalTopK,
		MaxCtx: cfg.EvalMaxCtx,
		Rerank: cfg.EvalRerank,
	}
	evalTimeout := time.Duration(cfg.EvalTimeoutSeconds) * time.Second

	var evalBackend ports.EvaluationBackend
	switch cfg.EvalBackend {
	case "subprocess":
		evalBackend = backend.NewSubprocess(cfg.EvalSubprocessPath, cfg.QdrantCollection, evalOpts, evalTimeout)
	default:
		pipeline := bootstrap.NewPipeline(cfg, "", "", logger)
		evalBackend = backend.NewInProcess(pipeline.EvaluateUC, evalOpts, evalTimeout)
	}

	logger.Info("mcp server starting", "backend", cfg.EvalBackend)
	if err := mcpadapter.NewServer(evalBackend).ServeStdio(); err != nil {
		logger.Error("mcp server stopped", "error", err)
	}
}
