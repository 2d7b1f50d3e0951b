package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/guardianai/guardianai/internal/core/domain"
	"github.com/guardianai/guardianai/internal/core/ports"
)

// UploadPolicyUseCase accepts a policy document, persists the file and the
// registry record, and hands the heavy work (extract, chunk, embed, index)
// to a worker via the queue.
type UploadPolicyUseCase struct {
	repo    ports.PolicyRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewUploadPolicyUseCase(
	repo ports.PolicyRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *UploadPolicyUseCase {
	return &UploadPolicyUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

func (uc *UploadPolicyUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
	meta domain.PolicyMetadata,
) (*domain.Policy, error) {
	id := meta.ID
	if id == "" {
		id = uuid.NewString()
	}
	meta.ID = id

	storageKey := fmt.Sprintf("policies/%s/%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	policy := &domain.Policy{
		ID:          id,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: storageKey,
		Metadata:    meta,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, policy); err != nil {
		return nil, fmt.Errorf("create policy record: %w", err)
	}

	if err := uc.queue.PublishPolicyIngested(ctx, policy.ID); err != nil {
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}

	return policy, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "policy.txt"
	}
	return base
}
