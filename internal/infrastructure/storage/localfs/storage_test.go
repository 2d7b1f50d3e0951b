package localfs

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	if err := storage.Save(ctx, "policies/p-1/rules.txt", strings.NewReader("no secrets")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reader, err := storage.Open(ctx, "policies/p-1/rules.txt")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(raw) != "no secrets" {
		t.Fatalf("unexpected content %q", raw)
	}
}

func TestOpenMissingKeyFails(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := storage.Open(context.Background(), "policies/missing.txt"); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestSaveRejectsTraversalKey(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := storage.Save(context.Background(), "../escape.txt", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error for traversal key")
	}
	if err := storage.Save(context.Background(), "/abs/escape.txt", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error for absolute key")
	}
}
