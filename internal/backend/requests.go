package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"taskflow-gateway/internal/transformers"
	apperrors "taskflow-gateway/pkg/errors"
)

const maxErrorBody = 2048

// do sends an authenticated JSON request. out may be nil.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return fmt.Errorf("no backend token for session: %w", err)
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s payload: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	return c.send(req, out)
}

// send executes req and decodes a 2xx body into out. A 401 clears the
// session's tokens and surfaces ErrUnauthorized.
func (c *Client) send(req *http.Request, out any) error {
	method, path := req.Method, req.URL.Path

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Warn("backend rejected session token", zap.String("method", method), zap.String("path", path))
		c.dropTokens(req.Context())
		return fmt.Errorf("backend %s %s: %w", method, path, apperrors.ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Method: method, Path: path, Status: resp.StatusCode, Body: string(raw)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// fetchRecords accepts either a JSON array or a paginated {"results": [...]}.
func (c *Client) fetchRecords(ctx context.Context, path string) ([]transformers.Record, error) {
	var raw any
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	if page, ok := transformers.AsRecord(raw); ok {
		if results, ok := page["results"]; ok {
			raw = results
		}
	}
	return transformers.Records(raw), nil
}

func (c *Client) fetchRecord(ctx context.Context, method, path string, body any) (transformers.Record, error) {
	var raw any
	if err := c.do(ctx, method, path, body, &raw); err != nil {
		return nil, err
	}
	rec, _ := transformers.AsRecord(raw)
	if rec == nil {
		rec = transformers.Record{}
	}
	return rec, nil
}

// listEntities fetches a collection and maps every record. Mapping never
// fails; the record count is logged for diagnostics.
func listEntities[T any](c *Client, ctx context.Context, endpoint string, mapper func(transformers.Record) T) ([]T, error) {
	records, err := c.fetchRecords(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}
	c.logger.Debug("fetched collection", zap.String("endpoint", endpoint), zap.Int("count", len(records)))

	out := make([]T, 0, len(records))
	for _, r := range records {
		out = append(out, mapper(r))
	}
	return out, nil
}

func requestEntity[T any](c *Client, ctx context.Context, method, endpoint string, payload any, mapper func(transformers.Record) T) (T, error) {
	rec, err := c.fetchRecord(ctx, method, endpoint, payload)
	if err != nil {
		var zero T
		return zero, err
	}
	return mapper(rec), nil
}
