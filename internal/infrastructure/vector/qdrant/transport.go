package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/guardianai/guardianai/internal/core/domain"
)

// doJSON issues one JSON request and decodes the response into out when
// non-nil. It returns the HTTP status code alongside any error so callers can
// special-case statuses like 409.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any, operation string) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, domain.WrapError(domain.ErrIndex, operation, fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, domain.WrapError(domain.ErrIndex, operation, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, domain.WrapError(domain.ErrIndex, operation, fmt.Errorf("qdrant request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return resp.StatusCode, domain.WrapError(domain.ErrIndex, operation, formatQdrantHTTPError(resp))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, domain.WrapError(domain.ErrIndex, operation, fmt.Errorf("decode response: %w", err))
		}
	}
	return resp.StatusCode, nil
}

func formatQdrantHTTPError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return fmt.Errorf("qdrant status: %s", resp.Status)
	}
	return fmt.Errorf("qdrant status: %s: %s", resp.Status, msg)
}
