// Package bootstrap wires configuration into the object graph. Pipeline is
// the retrieval/evaluation core shared by every entrypoint; App adds the
// registry, storage and queue used by the api and worker services.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/guardianai/guardianai/internal/config"
	"github.com/guardianai/guardianai/internal/core/domain"
	"github.com/guardianai/guardianai/internal/core/ports"
	"github.com/guardianai/guardianai/internal/core/usecase"
	"github.com/guardianai/guardianai/internal/infrastructure/backend"
	"github.com/guardianai/guardianai/internal/infrastructure/chunking"
	"github.com/guardianai/guardianai/internal/infrastructure/embedding/ollama"
	"github.com/guardianai/guardianai/internal/infrastructure/extractor"
	"github.com/guardianai/guardianai/internal/infrastructure/llm/groq"
	"github.com/guardianai/guardianai/internal/infrastructure/queue/natsqueue"
	"github.com/guardianai/guardianai/internal/infrastructure/repository/postgres"
	"github.com/guardianai/guardianai/internal/infrastructure/rerank/lexical"
	"github.com/guardianai/guardianai/internal/infrastructure/resilience"
	"github.com/guardianai/guardianai/internal/infrastructure/storage/localfs"
	"github.com/guardianai/guardianai/internal/infrastructure/vector/qdrant"
)

// Pipeline holds the retrieval and evaluation core, independent of the
// registry/queue side. The CLI builds only this.
type Pipeline struct {
	Chunker    ports.Chunker
	Embedder   ports.Embedder
	Index      ports.VectorIndex
	Retriever  *usecase.Retriever
	Indexer    *usecase.IndexDocumentUseCase
	QueryUC    *usecase.QueryUseCase
	EvaluateUC *usecase.EvaluateUseCase
	Assistant  ports.Assistant
}

// NewPipeline builds the core against one collection. An empty collection or
// embedding model falls back to the configured default.
func NewPipeline(cfg config.Config, collection, embeddingModel string, logger *slog.Logger) *Pipeline {
	if collection == "" {
		collection = cfg.QdrantCollection
	}
	if embeddingModel == "" {
		embeddingModel = cfg.EmbeddingModel
	}
	if logger == nil {
		logger = slog.Default()
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	embedder := ollama.New(cfg.OllamaURL, embeddingModel, executor)
	index := qdrant.New(cfg.QdrantURL, cfg.QdrantAPIKey, collection)
	reranker := lexical.New()

	var generator ports.AnswerGenerator
	var assistant ports.Assistant
	var judge ports.SafetyJudge
	if cfg.GroqAPIKey != "" {
		groqClient := groq.New(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel, executor)
		generator = groq.NewGenerator(groqClient)
		assistant = groq.NewAssistant(groqClient)
		judge = groq.NewJudge(groqClient)
	} else {
		judge = unavailableJudge{}
	}

	retriever := usecase.NewRetriever(embedder, index, reranker)
	indexer := usecase.NewIndexDocumentUseCase(chunker, embedder, index, cfg.EmbedBatchSize)
	queryUC := usecase.NewQueryUseCase(retriever, generator)
	evaluateUC := usecase.NewEvaluateUseCase(retriever, judge, logger)

	return &Pipeline{
		Chunker:    chunker,
		Embedder:   embedder,
		Index:      index,
		Retriever:  retriever,
		Indexer:    indexer,
		QueryUC:    queryUC,
		EvaluateUC: evaluateUC,
		Assistant:  assistant,
	}
}

// unavailableJudge keeps the evaluator's error contract when no LLM
// credential is configured; callers fail closed.
type unavailableJudge struct{}

func (unavailableJudge) Judge(context.Context, string, []string) (domain.SafetyEvaluation, error) {
	return domain.SafetyEvaluation{}, domain.WrapError(domain.ErrEvaluation, "judge", fmt.Errorf("no LLM credential configured"))
}

type App struct {
	Config   config.Config
	Pipeline *Pipeline

	Queue       ports.MessageQueue
	Repo        ports.PolicyRepository
	UploadUC    ports.PolicyIngestor
	ProcessUC   *usecase.ProcessPolicyUseCase
	RetractUC   ports.PolicyRetractor
	EvalBackend ports.EvaluationBackend

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewPolicyRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := natsqueue.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsqueue.Options{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	pipeline := NewPipeline(cfg, "", "", logger)

	uploadUC := usecase.NewUploadPolicyUseCase(repo, storage, queue)
	processUC := usecase.NewProcessPolicyUseCase(repo, extractor.NewComposite(storage), pipeline.Indexer)
	retractUC := usecase.NewRetractPolicyUseCase(repo, pipeline.Indexer)

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
		evalBackend = backend.NewInProcess(pipeline.EvaluateUC, evalOpts, evalTimeout)
	}

	return &App{
		Config:   cfg,
		Pipeline: pipeline,

		Queue:       queue,
		Repo:        repo,
		UploadUC:    uploadUC,
		ProcessUC:   processUC,
		RetractUC:   retractUC,
		EvalBackend: evalBackend,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
