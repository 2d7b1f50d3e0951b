package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/guardianai/guardianai/internal/core/domain"
	"github.com/guardianai/guardianai/internal/core/ports"
)

const (
	defaultEvalTopK   = 5
	defaultEvalMaxCtx = 5
)

// EvaluateUseCase is the guardian pipeline: retrieve policy context for the
// text under evaluation, then ask the structured judge for a verdict. Any
// failure surfaces as an error; callers translate it into the fail-closed
// verdict with domain.FailSafeReport. A verdict produced with zero retrieved
// contexts is flagged degraded, not failed.
type EvaluateUseCase struct {
	retriever *Retriever
	judge     ports.SafetyJudge
	logger    *slog.Logger
}

func NewEvaluateUseCase(retriever *Retriever, judge ports.SafetyJudge, logger *slog.Logger) *EvaluateUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &EvaluateUseCase{
		retriever: retriever,
		judge:     judge,
		logger:    logger,
	}
}

func (uc *EvaluateUseCase) Evaluate(ctx context.Context, text string, opts domain.QueryOptions) (domain.EvaluationReport, error) {
	if text == "" {
		return domain.EvaluationReport{}, domain.WrapError(domain.ErrInvalidInput, "evaluate", errors.New("empty text"))
	}
	if opts.TopK <= 0 {
		opts.TopK = defaultEvalTopK
	}
	if opts.MaxCtx <= 0 {
		opts.MaxCtx = defaultEvalMaxCtx
	}

	candidates, err := uc.retriever.Retrieve(ctx, text, opts.TopK, opts.Rerank)
	if err != nil {
		return domain.EvaluationReport{}, domain.WrapError(domain.ErrEvaluation, "retrieve context", err)
	}

	head := candidates
	if len(head) > opts.MaxCtx {
		head = head[:opts.MaxCtx]
	}
	contexts := make([]string, len(head))
	for i, candidate := range head {
		contexts[i] = candidate.Text
	}

	degraded := len(contexts) == 0
	if degraded {
		uc.logger.Warn("no relevant policy context found; evaluation may be unreliable")
	}

	evaluation, err := uc.judge.Judge(ctx, text, contexts)
	if err != nil {
		if domain.IsKind(err, domain.ErrEvaluation) {
			return domain.EvaluationReport{}, err
		}
		return domain.EvaluationReport{}, domain.WrapError(domain.ErrEvaluation, "judge", err)
	}
	if err := evaluation.Validate(); err != nil {
		return domain.EvaluationReport{}, fmt.Errorf("judge returned invalid verdict: %w", err)
	}

	return domain.EvaluationReport{
		SafetyEvaluation: evaluation,
		Degraded:         degraded,
		ContextCount:     len(contexts),
	}, nil
}
