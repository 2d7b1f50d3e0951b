package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/guardianai/guardianai/internal/core/domain"
)

func TestEnsureCollectionIsIdempotent(t *testing.T) {
	var ensureCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/collections/policies" {
			atomic.AddInt32(&ensureCalls, 1)
			w.WriteHeader(http.StatusCreated)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := New(server.URL, "", "policies")
	if err := client.EnsureCollection(context.Background(), 4); err != nil {
		t.Fatalf("first EnsureCollection() error = %v", err)
	}
	if err := client.EnsureCollection(context.Background(), 4); err != nil {
		t.Fatalf("second EnsureCollection() error = %v", err)
	}
	if got := atomic.LoadInt32(&ensureCalls); got != 1 {
		t.Fatalf("expected one ensure call, got %d", got)
	}
}

func TestEnsureCollectionTreatsConflictAsExisting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	client := New(server.URL, "", "policies")
	if err := client.EnsureCollection(context.Background(), 4); err != nil {
		t.Fatalf("EnsureCollection() on existing collection error = %v", err)
	}
}

func TestUpsertSendsPayloadAndMetadata(t *testing.T) {
	var captured struct {
		Points []struct {
			ID      string         `json:"id"`
			Vector  []float32      `json:"vector"`
			Payload map[string]any `json:"payload"`
		} `json:"points"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/collections/policies/points" {
			if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
				t.Errorf("decode upsert body: %v", err)
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := New(server.URL, "", "policies")
	chunks := []domain.DocumentChunk{
		{ID: "c1", Text: "no PII in prompts", DocID: "p1", Source: "hr.txt", ChunkIndex: 0},
	}
	vectors := [][]float32{{0.1, 0.2}}
	meta := domain.PolicyMetadata{Name: "HR Policy", Severity: "high"}

	if err := client.Upsert(context.Background(), chunks, vectors, meta); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if len(captured.Points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(captured.Points))
	}
	payload := captured.Points[0].Payload
	if payload["text"] != "no PII in prompts" {
		t.Fatalf("unexpected text payload %v", payload["text"])
	}
	if payload["doc_id"] != "p1" {
		t.Fatalf("unexpected doc_id payload %v", payload["doc_id"])
	}
	if payload["name"] != "HR Policy" || payload["severity"] != "high" {
		t.Fatalf("expected metadata in payload, got %v", payload)
	}
	if captured.Points[0].ID != "c1" {
		t.Fatalf("expected point id to be the chunk id, got %s", captured.Points[0].ID)
	}
}

func TestUpsertRejectsMismatchedVectors(t *testing.T) {
	client := New("http://localhost:9", "", "policies")
	chunks := []domain.DocumentChunk{{ID: "c1", Text: "a"}}
	err := client.Upsert(context.Background(), chunks, nil, domain.PolicyMetadata{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrIndex) {
		t.Fatalf("expected ErrIndex, got %v", err)
	}
}

func TestSearchDecodesCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/collections/policies/points/search" {
			_, _ = w.Write([]byte(`{"result":[
				{"score":0.91,"payload":{"text":"rule one","doc_id":"p1","source":"hr.txt","chunk_index":2,"name":"HR","severity":"high"}},
				{"score":0.55,"payload":{"text":"rule two","doc_id":"p2","source":"sec.txt","chunk_index":0}}
			]}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := New(server.URL, "", "policies")
	candidates, err := client.Search(context.Background(), []float32{0.1, 0.2}, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	first := candidates[0]
	if first.Text != "rule one" || first.DocID != "p1" || first.ChunkIndex != 2 {
		t.Fatalf("unexpected first candidate %+v", first)
	}
	if first.PolicyName != "HR" || first.Severity != "high" {
		t.Fatalf("expected metadata fields, got %+v", first)
	}
	if first.Score != 0.91 {
		t.Fatalf("expected score 0.91, got %f", first.Score)
	}
}

func TestSearchRejectsInvalidTopK(t *testing.T) {
	client := New("http://localhost:9", "", "policies")
	if _, err := client.Search(context.Background(), []float32{0.1}, 0); err == nil {
		t.Fatalf("expected error for top_k=0")
	}
}

func TestCountReturnsExactCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/collections/policies/points/count" {
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["exact"] != true {
				t.Errorf("expected exact count request, got %v", body)
			}
			_, _ = w.Write([]byte(`{"result":{"count":42}}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := New(server.URL, "", "policies")
	count, err := client.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 42 {
		t.Fatalf("expected count 42, got %d", count)
	}
}

func TestDeleteByDocIDSendsFilter(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/collections/policies/points/delete" {
			_ = json.NewDecoder(r.Body).Decode(&captured)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := New(server.URL, "", "policies")
	if err := client.DeleteByDocID(context.Background(), "p1"); err != nil {
		t.Fatalf("DeleteByDocID() error = %v", err)
	}
	raw, _ := json.Marshal(captured)
	if !strings.Contains(string(raw), `"doc_id"`) || !strings.Contains(string(raw), `"p1"`) {
		t.Fatalf("expected doc_id filter in body, got %s", raw)
	}
}

func TestRequestsCarryAPIKeyHeader(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("api-key")
		_, _ = w.Write([]byte(`{"result":{"count":0}}`))
	}))
	defer server.Close()

	client := New(server.URL, "secret", "policies")
	if _, err := client.Count(context.Background()); err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if gotKey != "secret" {
		t.Fatalf("expected api-key header, got %q", gotKey)
	}
}
