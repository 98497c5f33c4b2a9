package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/nsf-ai/knowledge-assistant/pkg/apperr"
)

// HTTPEngine reaches the knowledge engine service over HTTP.
type HTTPEngine struct {
	baseURL string
	client  *http.Client
}

// NewHTTPEngine creates an adapter for the engine service at baseURL.
// Call deadlines come from the caller's context, so the underlying
// client carries no timeout of its own.
func NewHTTPEngine(baseURL string) *HTTPEngine {
	return &HTTPEngine{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

type insertRequest struct {
	Text string `json:"text"`
}

type queryRequest struct {
	Question string `json:"question"`
}

type queryResponse struct {
	Response string `json:"response"`
}

// Insert adds text to the engine's index.
func (e *HTTPEngine) Insert(ctx context.Context, text string) error {
	_, err := e.post(ctx, "/insert", insertRequest{Text: text})
	return err
}

// Query answers a standalone question over the indexed corpus.
func (e *HTTPEngine) Query(ctx context.Context, question string) (string, error) {
	body, err := e.post(ctx, "/query", queryRequest{Question: question})
	if err != nil {
		return "", err
	}

	var resp queryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", apperr.Engine("engine returned malformed response", err)
	}
	return resp.Response, nil
}

func (e *HTTPEngine) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.Engine("failed to encode engine request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Engine("failed to build engine request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, apperr.Engine("engine unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, apperr.Engine("failed to read engine response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Engine(
			fmt.Sprintf("engine returned status %d", resp.StatusCode),
			fmt.Errorf("%s", bytes.TrimSpace(body)),
		)
	}
	return body, nil
}
