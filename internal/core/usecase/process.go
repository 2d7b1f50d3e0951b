package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/guardianai/guardianai/internal/core/domain"
	"github.com/guardianai/guardianai/internal/core/ports"
)

// ProcessPolicyUseCase runs on the worker side of the queue: it loads the
// uploaded policy, extracts its text and pushes it through the indexing
// pipeline, tracking lifecycle status in the registry.
type ProcessPolicyUseCase struct {
	repo      ports.PolicyRepository
	extractor ports.TextExtractor
	indexer   *IndexDocumentUseCase
	onIndexed func(chunks int)
}

func NewProcessPolicyUseCase(
	repo ports.PolicyRepository,
	extractor ports.TextExtractor,
	indexer *IndexDocumentUseCase,
) *ProcessPolicyUseCase {
	return &ProcessPolicyUseCase{
		repo:      repo,
		extractor: extractor,
		indexer:   indexer,
	}
}

func (uc *ProcessPolicyUseCase) ProcessByID(ctx context.Context, policyID string) error {
	if err := uc.repo.UpdateStatus(ctx, policyID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	if err := uc.processPipeline(ctx, policyID); err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, policyID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.UpdateStatus(ctx, policyID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessPolicyUseCase) processPipeline(ctx context.Context, policyID string) error {
	policy, err := uc.repo.GetByID(ctx, policyID)
	if err != nil {
		return fmt.Errorf("fetch policy by id: %w", err)
	}

	text, err := uc.extractor.Extract(ctx, policy)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}
	if text == "" {
		return domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty extracted text"))
	}

	chunks, err := uc.indexer.IndexText(ctx, policy.ID, policy.Filename, text, policy.Metadata)
	if err != nil {
		return err
	}
	if uc.onIndexed != nil {
		uc.onIndexed(chunks)
	}
	return nil
}

// OnIndexed registers an observer for the number of chunks indexed per
// successfully processed policy.
func (uc *ProcessPolicyUseCase) OnIndexed(fn func(chunks int)) {
	uc.onIndexed = fn
}

// RetractPolicyUseCase removes a policy from the index and marks the
// registry record deleted. The stored file is kept for audit.
type RetractPolicyUseCase struct {
	repo    ports.PolicyRepository
	indexer *IndexDocumentUseCase
}

func NewRetractPolicyUseCase(repo ports.PolicyRepository, indexer *IndexDocumentUseCase) *RetractPolicyUseCase {
	return &RetractPolicyUseCase{repo: repo, indexer: indexer}
}

func (uc *RetractPolicyUseCase) Retract(ctx context.Context, policyID string) error {
	if _, err := uc.repo.GetByID(ctx, policyID); err != nil {
		return fmt.Errorf("fetch policy by id: %w", err)
	}

	if err := uc.indexer.DeleteDocument(ctx, policyID); err != nil {
		return err
	}

	if err := uc.repo.UpdateStatus(ctx, policyID, domain.StatusDeleted, ""); err != nil {
		return fmt.Errorf("set status=deleted: %w", err)
	}
	return nil
}
