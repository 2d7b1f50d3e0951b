package ports

import (
	"context"
	"io"

	"github.com/guardianai/guardianai/internal/core/domain"
)

// PolicyRepository persists and reads policy registry state.
type PolicyRepository interface {
	Create(ctx context.Context, policy *domain.Policy) error
	GetByID(ctx context.Context, id string) (*domain.Policy, error)
	UpdateStatus(ctx context.Context, id string, status domain.PolicyStatus, errMessage string) error
}

// ObjectStorage stores uploaded policy files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes policy ingestion events.
type MessageQueue interface {
	PublishPolicyIngested(ctx context.Context, policyID string) error
	SubscribePolicyIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor extracts plain text from a stored policy document.
type TextExtractor interface {
	Extract(ctx context.Context, policy *domain.Policy) (string, error)
}

// Embedder builds vectors for chunk batches and query text. Output order
// matches input order; an empty batch is rejected.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Chunker splits normalized text into overlapping word windows.
type Chunker interface {
	Split(text string) []string
}

// VectorIndex owns the collection: creation, upserts, nearest-neighbor
// search, counting and doc-scoped deletion.
type VectorIndex interface {
	EnsureCollection(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, chunks []domain.DocumentChunk, vectors [][]float32, meta domain.PolicyMetadata) error
	Search(ctx context.Context, queryVector []float32, topK int) ([]domain.ScoredCandidate, error)
	Count(ctx context.Context) (uint64, error)
	DeleteByDocID(ctx context.Context, docID string) error
}

// Reranker reorders candidates by a pairwise query/document relevance score,
// discarding the original vector similarity.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []domain.ScoredCandidate) ([]domain.ScoredCandidate, error)
}

// AnswerGenerator synthesizes an answer strictly from the given contexts.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, contexts []string) (string, error)
}

// Assistant is the primary LLM whose responses the guardian screens.
type Assistant interface {
	Respond(ctx context.Context, prompt string) (string, error)
}

// SafetyJudge produces a schema-validated safety verdict for a text given
// retrieved policy context.
type SafetyJudge interface {
	Judge(ctx context.Context, text string, contexts []string) (domain.SafetyEvaluation, error)
}
