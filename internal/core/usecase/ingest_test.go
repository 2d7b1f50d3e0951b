package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/guardianai/guardianai/internal/core/domain"
)

type ingestRepoFake struct {
	created *domain.Policy
	err     error
}

func (f *ingestRepoFake) Create(_ context.Context, policy *domain.Policy) error {
	if f.err != nil {
		return f.err
	}
	copyPolicy := *policy
	f.created = &copyPolicy
	return nil
}

func (f *ingestRepoFake) GetByID(context.Context, string) (*domain.Policy, error) {
	return nil, errors.New("not implemented")
}
func (f *ingestRepoFake) UpdateStatus(context.Context, string, domain.PolicyStatus, string) error {
	return errors.New("not implemented")
}

type ingestStorageFake struct {
	savedKey  string
	savedBody string
	err       error
}

func (f *ingestStorageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *ingestStorageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

type ingestQueueFake struct {
	policyID string
	err      error
}

func (f *ingestQueueFake) PublishPolicyIngested(_ context.Context, policyID string) error {
	if f.err != nil {
		return f.err
	}
	f.policyID = policyID
	return nil
}

func (f *ingestQueueFake) SubscribePolicyIngested(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

func TestUploadPolicySuccess(t *testing.T) {
	repo := &ingestRepoFake{}
	storage := &ingestStorageFake{}
	queue := &ingestQueueFake{}
	uc := NewUploadPolicyUseCase(repo, storage, queue)

	meta := domain.PolicyMetadata{Name: "data handling", Severity: domain.SeverityHigh}
	policy, err := uc.Upload(context.Background(), "data rules v2.txt", "text/plain", bytes.NewBufferString("no secrets"), meta)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if policy.ID == "" {
		t.Fatalf("expected policy id")
	}
	if policy.Metadata.ID != policy.ID {
		t.Fatalf("expected metadata id to match policy id")
	}
	if policy.Status != domain.StatusUploaded {
		t.Fatalf("expected status uploaded, got %s", policy.Status)
	}
	if repo.created == nil {
		t.Fatalf("expected repo.Create call")
	}
	if queue.policyID != policy.ID {
		t.Fatalf("expected queued policy id %s, got %s", policy.ID, queue.policyID)
	}
	if !strings.Contains(storage.savedKey, "data_rules_v2.txt") {
		t.Fatalf("expected sanitized key, got %s", storage.savedKey)
	}
	if storage.savedBody != "no secrets" {
		t.Fatalf("expected saved body, got %s", storage.savedBody)
	}
}

func TestUploadPolicyKeepsCallerID(t *testing.T) {
	repo := &ingestRepoFake{}
	uc := NewUploadPolicyUseCase(repo, &ingestStorageFake{}, &ingestQueueFake{})

	meta := domain.PolicyMetadata{ID: "policy-42"}
	policy, err := uc.Upload(context.Background(), "rules.txt", "text/plain", bytes.NewBufferString("x"), meta)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if policy.ID != "policy-42" {
		t.Fatalf("expected caller id kept, got %s", policy.ID)
	}
}

func TestUploadPolicyQueueError(t *testing.T) {
	repo := &ingestRepoFake{}
	queue := &ingestQueueFake{err: errors.New("queue down")}
	uc := NewUploadPolicyUseCase(repo, &ingestStorageFake{}, queue)

	_, err := uc.Upload(context.Background(), "rules.txt", "text/plain", bytes.NewBufferString("x"), domain.PolicyMetadata{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "publish ingestion event") {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestUploadPolicyStorageError(t *testing.T) {
	storage := &ingestStorageFake{err: errors.New("disk full")}
	uc := NewUploadPolicyUseCase(&ingestRepoFake{}, storage, &ingestQueueFake{})

	_, err := uc.Upload(context.Background(), "rules.txt", "text/plain", bytes.NewBufferString("x"), domain.PolicyMetadata{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "save to object storage") {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"data rules.txt":  "data_rules.txt",
		"../../etc/pwned": "pwned",
		"ok-name_1.pdf":   "ok-name_1.pdf",
		"":                "policy.txt",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
