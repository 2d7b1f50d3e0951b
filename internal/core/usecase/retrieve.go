package usecase

import (
	"context"
	"fmt"

	"github.com/guardianai/guardianai/internal/core/domain"
	"github.com/guardianai/guardianai/internal/core/ports"
)

// Retriever is the shared retrieval front of the query and evaluation
// pipelines: embed the query, nearest-neighbor search, optional pairwise
// rerank.
type Retriever struct {
	embedder ports.Embedder
	index    ports.VectorIndex
	reranker ports.Reranker
}

func NewRetriever(embedder ports.Embedder, index ports.VectorIndex, reranker ports.Reranker) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
		reranker: reranker,
	}
}

func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, rerank bool) ([]domain.ScoredCandidate, error) {
	queryVector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := r.index.Search(ctx, queryVector, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	if rerank && r.reranker != nil && len(candidates) > 0 {
		candidates, err = r.reranker.Rerank(ctx, query, candidates)
		if err != nil {
			return nil, fmt.Errorf("rerank candidates: %w", err)
		}
	}
	return candidates, nil
}
