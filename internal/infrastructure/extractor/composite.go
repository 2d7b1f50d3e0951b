package extractor

import (
	"context"
	"fmt"
	"io"

	"github.com/guardianai/guardianai/internal/core/domain"
	"github.com/guardianai/guardianai/internal/core/ports"
)

// Composite reads a policy document from object storage and extracts its
// plain text by extension.
type Composite struct {
	storage ports.ObjectStorage
}

func NewComposite(storage ports.ObjectStorage) *Composite {
	return &Composite{storage: storage}
}

func (c *Composite) Extract(ctx context.Context, policy *domain.Policy) (string, error) {
	reader, err := c.storage.Open(ctx, policy.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open policy document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read policy document: %w", err)
	}

	return FromBytes(policy.Filename, raw)
}
