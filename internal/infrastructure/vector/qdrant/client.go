package qdrant

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/guardianai/guardianai/internal/core/domain"
)

// Client talks to one Qdrant collection over its REST API. The collection
// dimension is fixed at first creation and never resized; vectors of a
// different dimension are rejected by Qdrant at upsert time.
type Client struct {
	baseURL    string
	apiKey     string
	collection string
	httpClient *http.Client

	ensureMu          sync.Mutex
	ensuredCollection bool
	ensuredDimension  int
}

func New(baseURL, apiKey, collection string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		collection: collection,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// EnsureCollection is idempotent: an existing collection is accepted as-is,
// even when its stored dimension differs from the requested one. Dimension
// drift surfaces later as an upsert error; a process-local warning is the
// only early signal.
func (c *Client) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return domain.WrapError(domain.ErrIndex, "ensure collection", fmt.Errorf("invalid dimension %d", dimension))
	}

	c.ensureMu.Lock()
	if c.ensuredCollection {
		if c.ensuredDimension != dimension {
			slog.Warn("collection_dimension_mismatch",
				"collection", c.collection,
				"ensured", c.ensuredDimension,
				"requested", dimension,
			)
		}
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	reqBody := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
		"optimizers_config": map[string]any{
			"default_segment_number": 2,
		},
	}

	status, err := c.doJSON(ctx, http.MethodPut, "/collections/"+c.collection, reqBody, nil, "ensure collection")
	if err != nil {
		// 409 means the collection already exists, which is success here.
		if status == http.StatusConflict {
			c.markEnsured(dimension)
			return nil
		}
		return err
	}
	c.markEnsured(dimension)
	return nil
}

// Upsert writes one batch of points. Insertion is overwrite-by-id; a failure
// aborts the call without rolling back previously written batches.
func (c *Client) Upsert(ctx context.Context, chunks []domain.DocumentChunk, vectors [][]float32, meta domain.PolicyMetadata) error {
	if len(chunks) == 0 {
		return nil
	}
	if len(chunks) != len(vectors) {
		return domain.WrapError(domain.ErrIndex, "upsert", fmt.Errorf("chunks/vectors mismatch: %d/%d", len(chunks), len(vectors)))
	}

	type point struct {
		ID      string         `json:"id"`
		Vector  []float32      `json:"vector"`
		Payload map[string]any `json:"payload"`
	}

	points := make([]point, 0, len(chunks))
	for i, chunk := range chunks {
		payload := map[string]any{
			"text":        chunk.Text,
			"doc_id":      chunk.DocID,
			"source":      chunk.Source,
			"chunk_index": chunk.ChunkIndex,
		}
		for key, value := range meta.PayloadFields() {
			payload[key] = value
		}
		points = append(points, point{
			ID:      chunk.ID,
			Vector:  vectors[i],
			Payload: payload,
		})
	}

	path := fmt.Sprintf("/collections/%s/points?wait=true", c.collection)
	if _, err := c.doJSON(ctx, http.MethodPut, path, map[string]any{"points": points}, nil, "upsert"); err != nil {
		return err
	}
	return nil
}

func (c *Client) Search(ctx context.Context, queryVector []float32, topK int) ([]domain.ScoredCandidate, error) {
	if topK < 1 {
		return nil, domain.WrapError(domain.ErrIndex, "search", fmt.Errorf("top_k must be >= 1, got %d", topK))
	}

	reqBody := map[string]any{
		"vector":       queryVector,
		"limit":        topK,
		"with_payload": true,
		"with_vectors": false,
	}

	var searchResp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/search", c.collection)
	if _, err := c.doJSON(ctx, http.MethodPost, path, reqBody, &searchResp, "search"); err != nil {
		return nil, err
	}

	out := make([]domain.ScoredCandidate, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		out = append(out, domain.ScoredCandidate{
			Text:       payloadString(r.Payload, "text"),
			DocID:      payloadString(r.Payload, "doc_id"),
			Source:     payloadString(r.Payload, "source"),
			ChunkIndex: payloadInt(r.Payload, "chunk_index"),
			PolicyName: payloadString(r.Payload, "name"),
			Severity:   payloadString(r.Payload, "severity"),
			Score:      r.Score,
		})
	}
	return out, nil
}

// Count returns the exact point count; used for confirmation output only.
func (c *Client) Count(ctx context.Context) (uint64, error) {
	var countResp struct {
		Result struct {
			Count uint64 `json:"count"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/count", c.collection)
	if _, err := c.doJSON(ctx, http.MethodPost, path, map[string]any{"exact": true}, &countResp, "count"); err != nil {
		return 0, err
	}
	return countResp.Result.Count, nil
}

// DeleteByDocID removes every point sharing a doc_id; used for policy
// retraction.
func (c *Client) DeleteByDocID(ctx context.Context, docID string) error {
	if docID == "" {
		return domain.WrapError(domain.ErrIndex, "delete by doc_id", fmt.Errorf("empty doc_id"))
	}
	reqBody := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{
					"key": "doc_id",
					"match": map[string]any{
						"value": docID,
					},
				},
			},
		},
	}
	path := fmt.Sprintf("/collections/%s/points/delete?wait=true", c.collection)
	if _, err := c.doJSON(ctx, http.MethodPost, path, reqBody, nil, "delete by doc_id"); err != nil {
		return err
	}
	return nil
}

func (c *Client) markEnsured(dimension int) {
	c.ensureMu.Lock()
	defer c.ensureMu.Unlock()
	c.ensuredCollection = true
	c.ensuredDimension = dimension
}

func payloadString(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func payloadInt(payload map[string]any, key string) int {
	v, ok := payload[key]
	if !ok {
		return 0
	}
	if f, ok := v.(float64); ok {
		return int(f)
	}
	return 0
}
