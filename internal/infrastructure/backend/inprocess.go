// Package backend hosts the two ways to run the evaluation pipeline: inside
// this process, or by spawning the guardian CLI and parsing its output. Both
// keep the evaluator's error contract; callers apply the fail-closed verdict.
package backend

import (
	"context"
	"time"

	"github.com/guardianai/guardianai/internal/core/domain"
	"github.com/guardianai/guardianai/internal/core/ports"
)

const defaultEvalTimeout = 60 * time.Second

// InProcess runs the evaluation pipeline directly with fixed retrieval
// options and a per-call timeout.
type InProcess struct {
	evaluator ports.SafetyEvaluator
	opts      domain.QueryOptions
	timeout   time.Duration
}

func NewInProcess(evaluator ports.SafetyEvaluator, opts domain.QueryOptions, timeout time.Duration) *InProcess {
	if timeout <= 0 {
		timeout = defaultEvalTimeout
	}
	return &InProcess{
		evaluator: evaluator,
		opts:      opts,
		timeout:   timeout,
	}
}

func (b *InProcess) Evaluate(ctx context.Context, text string) (domain.EvaluationReport, error) {
	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.evaluator.Evaluate(callCtx, text, b.opts)
}
