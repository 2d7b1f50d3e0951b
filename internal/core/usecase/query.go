package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/guardianai/guardianai/internal/core/domain"
	"github.com/guardianai/guardianai/internal/core/ports"
)

const (
	defaultQueryTopK   = 8
	defaultQueryMaxCtx = 4
)

// extractiveFallbackMarker closes the fallback answer so callers and tests
// can distinguish it from a generated one.
const extractiveFallbackMarker = "(LLM not configured — returning top context chunks)"

// QueryUseCase answers a question from retrieved policy context. When no
// generator is configured, or the generator call fails, it degrades to a
// deterministic extractive answer built from the top contexts.
type QueryUseCase struct {
	retriever *Retriever
	generator ports.AnswerGenerator
}

func NewQueryUseCase(retriever *Retriever, generator ports.AnswerGenerator) *QueryUseCase {
	return &QueryUseCase{
		retriever: retriever,
		generator: generator,
	}
}

func (uc *QueryUseCase) Answer(ctx context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error) {
	if opts.TopK <= 0 {
		opts.TopK = defaultQueryTopK
	}
	if opts.MaxCtx <= 0 {
		opts.MaxCtx = defaultQueryMaxCtx
	}

	candidates, err := uc.retriever.Retrieve(ctx, question, opts.TopK, opts.Rerank)
	if err != nil {
		return nil, err
	}

	head := candidates
	if len(head) > opts.MaxCtx {
		head = head[:opts.MaxCtx]
	}

	contexts := make([]string, len(head))
	for i, candidate := range head {
		contexts[i] = fmt.Sprintf("%s\n[source: %s#%d]\n", candidate.Text, candidate.Source, candidate.ChunkIndex)
	}

	answerText := ""
	if uc.generator != nil {
		answerText, err = uc.generator.GenerateAnswer(ctx, question, contexts)
	}
	if uc.generator == nil || err != nil {
		answerText = ExtractiveFallback(contexts)
	}

	return &domain.Answer{
		Text:    answerText,
		Sources: candidates,
	}, nil
}

// ExtractiveFallback concatenates the top three contexts verbatim with an
// explicit marker. Bit-reproducible for the same contexts.
func ExtractiveFallback(contexts []string) string {
	head := contexts
	if len(head) > 3 {
		head = head[:3]
	}
	return strings.Join(head, "\n") + "\n\n" + extractiveFallbackMarker
}
