package mcpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/askcampus/askcampus/internal/core/domain"
)

// HTTPQueryClient implements the query port against a running api instance,
// so the MCP binary stays a thin bridge without its own database or model
// access.
type HTTPQueryClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPQueryClient(baseURL string, timeout time.Duration) *HTTPQueryClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPQueryClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPQueryClient) Answer(ctx context.Context, question string, topK int) (*domain.Answer, error) {
	body, err := json.Marshal(map[string]any{
		"question": question,
		"top_k":    topK,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/qa/query", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "query api", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		err := fmt.Errorf("api status %d: %s", resp.StatusCode, apiErr.Error)
		if resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusTooManyRequests {
			return nil, domain.WrapError(domain.ErrTemporary, "query api", err)
		}
		return nil, err
	}

	var answer domain.Answer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return nil, fmt.Errorf("decode answer: %w", err)
	}
	return &answer, nil
}
