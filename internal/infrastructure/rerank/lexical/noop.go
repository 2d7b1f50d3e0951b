package lexical

import (
	"context"

	"github.com/guardianai/guardianai/internal/core/domain"
)

// Noop returns candidates unchanged. Used when reranking is disabled so the
// retrieval pipeline keeps a single code path.
type Noop struct{}

func (Noop) Rerank(_ context.Context, _ string, candidates []domain.ScoredCandidate) ([]domain.ScoredCandidate, error) {
	return candidates, nil
}
