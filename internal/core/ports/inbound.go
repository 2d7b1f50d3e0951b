package ports

import (
	"context"
	"io"

	"github.com/guardianai/guardianai/internal/core/domain"
)

// PolicyIngestor is the inbound contract for policy upload orchestration.
type PolicyIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader, meta domain.PolicyMetadata) (*domain.Policy, error)
}

// PolicyProcessor is the inbound contract for asynchronous policy indexing.
type PolicyProcessor interface {
	ProcessByID(ctx context.Context, policyID string) error
}

// PolicyRetractor removes a policy's chunks from the index.
type PolicyRetractor interface {
	Retract(ctx context.Context, policyID string) error
}

// QueryService answers questions grounded in retrieved policy context.
type QueryService interface {
	Answer(ctx context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error)
}

// SafetyEvaluator runs the retrieval-grounded evaluation pipeline. It returns
// an error instead of a verdict on failure; callers decide to apply
// domain.FailSafeReport, keeping the fail-closed policy at the boundary.
type SafetyEvaluator interface {
	Evaluate(ctx context.Context, text string, opts domain.QueryOptions) (domain.EvaluationReport, error)
}

// EvaluationBackend abstracts where the evaluation pipeline runs: in this
// process or in a spawned guardian subprocess. Both honor the
// SafetyEvaluator error contract.
type EvaluationBackend interface {
	Evaluate(ctx context.Context, text string) (domain.EvaluationReport, error)
}
