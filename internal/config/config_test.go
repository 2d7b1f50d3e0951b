package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GUARDIAN_CONFIG", "")
	t.Setenv("QDRANT_COLLECTION", "")
	t.Setenv("EMBEDDING_MODEL", "")
	t.Setenv("CHUNK_SIZE", "")
	t.Setenv("EVAL_BACKEND", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.QdrantCollection != "guardianai_policies" {
		t.Fatalf("expected default collection, got %q", cfg.QdrantCollection)
	}
	if cfg.EmbeddingModel != "nomic-embed-text" {
		t.Fatalf("expected default embedding model, got %q", cfg.EmbeddingModel)
	}
	if cfg.ChunkSize != 800 || cfg.ChunkOverlap != 120 {
		t.Fatalf("expected default chunking 800/120, got %d/%d", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.EvalBackend != "inprocess" {
		t.Fatalf("expected default inprocess backend, got %q", cfg.EvalBackend)
	}
	if cfg.EvalTopK != 5 || cfg.EvalMaxCtx != 5 {
		t.Fatalf("expected evaluation defaults 5/5, got %d/%d", cfg.EvalTopK, cfg.EvalMaxCtx)
	}
	if cfg.QueryTopK != 8 || cfg.QueryMaxCtx != 4 {
		t.Fatalf("expected query defaults 8/4, got %d/%d", cfg.QueryTopK, cfg.QueryMaxCtx)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("GUARDIAN_CONFIG", "")
	t.Setenv("QDRANT_COLLECTION", "policies_v2")
	t.Setenv("CHUNK_SIZE", "400")
	t.Setenv("EVAL_BACKEND", "subprocess")
	t.Setenv("EVAL_RERANK", "true")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.QdrantCollection != "policies_v2" {
		t.Fatalf("expected collection override, got %q", cfg.QdrantCollection)
	}
	if cfg.ChunkSize != 400 {
		t.Fatalf("expected chunk size 400, got %d", cfg.ChunkSize)
	}
	if cfg.EvalBackend != "subprocess" {
		t.Fatalf("expected subprocess backend, got %q", cfg.EvalBackend)
	}
	if !cfg.EvalRerank {
		t.Fatalf("expected rerank enabled")
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit 2.5, got %f", cfg.APIRateLimitRPS)
	}
}

func TestLoadAppliesYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guardian.yaml")
	content := "qdrant_collection: yaml_policies\nchunk_size: 500\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("GUARDIAN_CONFIG", path)
	t.Setenv("QDRANT_COLLECTION", "env_policies")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.QdrantCollection != "yaml_policies" {
		t.Fatalf("expected yaml to win over env, got %q", cfg.QdrantCollection)
	}
	if cfg.ChunkSize != 500 {
		t.Fatalf("expected yaml chunk size 500, got %d", cfg.ChunkSize)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("GUARDIAN_CONFIG", "")
	t.Setenv("EVAL_BACKEND", "remote")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
