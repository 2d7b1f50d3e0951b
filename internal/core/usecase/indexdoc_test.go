package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/guardianai/guardianai/internal/core/domain"
)

type chunkerFake struct {
	chunks []string
}

func (f *chunkerFake) Split(string) []string { return f.chunks }

type embedderFake struct {
	dimension int
	batches   [][]string
	err       error
	queryErr  error
}

func (f *embedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.batches = append(f.batches, texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, f.dimension)
	}
	return out, nil
}

func (f *embedderFake) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return make([]float32, f.dimension), nil
}

type indexFake struct {
	ensuredDimension int
	ensureCalls      int
	upserted         []domain.DocumentChunk
	meta             domain.PolicyMetadata
	deletedDocID     string
	count            uint64
	searchResults    []domain.ScoredCandidate
	ensureErr        error
	upsertErr        error
	searchErr        error
}

func (f *indexFake) EnsureCollection(_ context.Context, dimension int) error {
	if f.ensureErr != nil {
		return f.ensureErr
	}
	f.ensureCalls++
	f.ensuredDimension = dimension
	return nil
}

func (f *indexFake) Upsert(_ context.Context, chunks []domain.DocumentChunk, vectors [][]float32, meta domain.PolicyMetadata) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, chunks...)
	f.meta = meta
	return nil
}

func (f *indexFake) Search(_ context.Context, _ []float32, _ int) ([]domain.ScoredCandidate, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResults, nil
}

func (f *indexFake) Count(context.Context) (uint64, error) { return f.count, nil }

func (f *indexFake) DeleteByDocID(_ context.Context, docID string) error {
	f.deletedDocID = docID
	return nil
}

func TestIndexTextBatchesAndEnsuresOnce(t *testing.T) {
	chunker := &chunkerFake{chunks: []string{"a", "b", "c", "d", "e"}}
	embedder := &embedderFake{dimension: 4}
	index := &indexFake{}
	uc := NewIndexDocumentUseCase(chunker, embedder, index, 2)

	meta := domain.PolicyMetadata{Name: "rules", Severity: domain.SeverityHigh}
	n, err := uc.IndexText(context.Background(), "doc-1", "rules.txt", "ignored", meta)
	if err != nil {
		t.Fatalf("IndexText() error = %v", err)
	}
	if n != 5 {
		t.Fatalf("expected 5 chunks indexed, got %d", n)
	}
	if got := len(embedder.batches); got != 3 {
		t.Fatalf("expected 3 embed batches, got %d", got)
	}
	if index.ensureCalls != 1 {
		t.Fatalf("expected one EnsureCollection call, got %d", index.ensureCalls)
	}
	if index.ensuredDimension != 4 {
		t.Fatalf("expected dimension 4, got %d", index.ensuredDimension)
	}
	if len(index.upserted) != 5 {
		t.Fatalf("expected 5 upserted chunks, got %d", len(index.upserted))
	}
	for i, chunk := range index.upserted {
		if chunk.ChunkIndex != i {
			t.Fatalf("expected contiguous chunk indexes, got %d at %d", chunk.ChunkIndex, i)
		}
		if chunk.DocID != "doc-1" || chunk.Source != "rules.txt" {
			t.Fatalf("unexpected chunk identity %+v", chunk)
		}
		if chunk.ID == "" {
			t.Fatalf("expected chunk id at %d", i)
		}
	}
	if index.meta.Name != "rules" {
		t.Fatalf("expected metadata forwarded, got %+v", index.meta)
	}
}

func TestIndexTextRejectsEmptyChunking(t *testing.T) {
	uc := NewIndexDocumentUseCase(&chunkerFake{}, &embedderFake{dimension: 4}, &indexFake{}, 0)

	_, err := uc.IndexText(context.Background(), "doc-1", "rules.txt", "", domain.PolicyMetadata{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestIndexTextStopsOnEmbedFailure(t *testing.T) {
	chunker := &chunkerFake{chunks: []string{"a", "b"}}
	embedder := &embedderFake{err: errors.New("embedder down")}
	index := &indexFake{}
	uc := NewIndexDocumentUseCase(chunker, embedder, index, 0)

	_, err := uc.IndexText(context.Background(), "doc-1", "rules.txt", "x", domain.PolicyMetadata{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "embed batch") {
		t.Fatalf("expected embed error, got %v", err)
	}
	if index.ensureCalls != 0 || len(index.upserted) != 0 {
		t.Fatalf("expected no index writes after embed failure")
	}
}

func TestIndexTextSurfacesEnsureFailure(t *testing.T) {
	chunker := &chunkerFake{chunks: []string{"a"}}
	index := &indexFake{ensureErr: errors.New("dimension mismatch")}
	uc := NewIndexDocumentUseCase(chunker, &embedderFake{dimension: 4}, index, 0)

	_, err := uc.IndexText(context.Background(), "doc-1", "rules.txt", "x", domain.PolicyMetadata{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "ensure collection") {
		t.Fatalf("expected ensure error, got %v", err)
	}
}

func TestDeleteDocumentRequiresID(t *testing.T) {
	uc := NewIndexDocumentUseCase(&chunkerFake{}, &embedderFake{}, &indexFake{}, 0)

	if err := uc.DeleteDocument(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty doc id")
	}

	index := &indexFake{}
	uc = NewIndexDocumentUseCase(&chunkerFake{}, &embedderFake{}, index, 0)
	if err := uc.DeleteDocument(context.Background(), "doc-9"); err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}
	if index.deletedDocID != "doc-9" {
		t.Fatalf("expected delete for doc-9, got %s", index.deletedDocID)
	}
}

func TestCountPoints(t *testing.T) {
	index := &indexFake{count: 17}
	uc := NewIndexDocumentUseCase(&chunkerFake{}, &embedderFake{}, index, 0)

	count, err := uc.CountPoints(context.Background())
	if err != nil {
		t.Fatalf("CountPoints() error = %v", err)
	}
	if count != 17 {
		t.Fatalf("expected 17, got %d", count)
	}
}
