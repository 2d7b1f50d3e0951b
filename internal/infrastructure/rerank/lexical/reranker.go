// Package lexical reorders retrieval candidates with a pairwise token-overlap
// score between the query and each candidate text. It stands in for a
// cross-encoder model: the original vector-similarity score is discarded and
// candidates are resorted by the pairwise score alone.
package lexical

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/guardianai/guardianai/internal/core/domain"
)

type Reranker struct{}

func New() *Reranker {
	return &Reranker{}
}

func (r *Reranker) Rerank(_ context.Context, query string, candidates []domain.ScoredCandidate) ([]domain.ScoredCandidate, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}

	queryTokens := toTokenSet(query)

	out := make([]domain.ScoredCandidate, len(candidates))
	copy(out, candidates)
	for i := range out {
		overlap := tokenOverlap(queryTokens, toTokenSet(out[i].Text))
		nameBoost := policyNameTokenHit(queryTokens, out[i].PolicyName)
		out[i].Score = 0.85*overlap + 0.15*nameBoost
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].DocID != out[j].DocID {
			return out[i].DocID < out[j].DocID
		}
		return out[i].ChunkIndex < out[j].ChunkIndex
	})
	return out, nil
}

func tokenOverlap(query, candidate map[string]struct{}) float64 {
	if len(query) == 0 || len(candidate) == 0 {
		return 0
	}
	matches := 0
	for token := range query {
		if _, ok := candidate[token]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(query))
}

func policyNameTokenHit(query map[string]struct{}, policyName string) float64 {
	if len(query) == 0 || policyName == "" {
		return 0
	}
	policyName = strings.ToLower(policyName)
	for token := range query {
		if token == "" {
			continue
		}
		if strings.Contains(policyName, token) {
			return 1
		}
	}
	return 0
}

func toTokenSet(s string) map[string]struct{} {
	tokens := splitAlphaNumLower(s)
	out := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		out[token] = struct{}{}
	}
	return out
}

func splitAlphaNumLower(s string) []string {
	if s == "" {
		return nil
	}

	tokens := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}
