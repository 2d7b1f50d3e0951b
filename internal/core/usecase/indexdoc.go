package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/guardianai/guardianai/internal/core/domain"
	"github.com/guardianai/guardianai/internal/core/ports"
)

const defaultBatchSize = 128

// IndexDocumentUseCase owns the chunk → embed → upsert pipeline for one
// document. The collection dimension is fixed from the first embedded batch;
// batches are processed sequentially so a failure leaves a clean prefix of
// the document indexed and the collection never sees mixed dimensions.
type IndexDocumentUseCase struct {
	chunker   ports.Chunker
	embedder  ports.Embedder
	index     ports.VectorIndex
	batchSize int
}

func NewIndexDocumentUseCase(
	chunker ports.Chunker,
	embedder ports.Embedder,
	index ports.VectorIndex,
	batchSize int,
) *IndexDocumentUseCase {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &IndexDocumentUseCase{
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
		batchSize: batchSize,
	}
}

// IndexText splits, embeds and upserts one document's text. Returns the
// number of chunks indexed.
func (uc *IndexDocumentUseCase) IndexText(
	ctx context.Context,
	docID, source, text string,
	meta domain.PolicyMetadata,
) (int, error) {
	pieces := uc.chunker.Split(text)
	if len(pieces) == 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("chunking produced zero chunks"))
	}

	chunks := make([]domain.DocumentChunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = domain.DocumentChunk{
			ID:         uuid.NewString(),
			Text:       piece,
			DocID:      docID,
			Source:     source,
			ChunkIndex: i,
		}
	}

	ensured := false
	for start := 0; start < len(chunks); start += uc.batchSize {
		end := start + uc.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Text
		}

		vectors, err := uc.embedder.Embed(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embed batch: %w", err)
		}
		if len(vectors) != len(batch) {
			return 0, domain.WrapError(
				domain.ErrEmbedding,
				"embed batch",
				fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(batch)),
			)
		}

		if !ensured {
			if err := uc.index.EnsureCollection(ctx, len(vectors[0])); err != nil {
				return 0, fmt.Errorf("ensure collection: %w", err)
			}
			ensured = true
		}

		if err := uc.index.Upsert(ctx, batch, vectors, meta); err != nil {
			return 0, fmt.Errorf("upsert batch: %w", err)
		}
	}

	return len(chunks), nil
}

// DeleteDocument removes every chunk of the document from the index.
func (uc *IndexDocumentUseCase) DeleteDocument(ctx context.Context, docID string) error {
	if docID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "delete document", errors.New("empty doc id"))
	}
	if err := uc.index.DeleteByDocID(ctx, docID); err != nil {
		return fmt.Errorf("delete document chunks: %w", err)
	}
	return nil
}

// CountPoints reports the exact number of points in the collection.
func (uc *IndexDocumentUseCase) CountPoints(ctx context.Context) (uint64, error) {
	count, err := uc.index.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count points: %w", err)
	}
	return count, nil
}
