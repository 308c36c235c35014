package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// listPage is one decoded list response.
type listPage struct {
	Count       int64
	TotalPages  int
	CurrentPage int
	Rows        [][]string
}

// rowFunc turns one raw item of the data array into table cells.
type rowFunc func(raw json.RawMessage) ([]string, error)

type apiClient struct {
	token string
	http  *http.Client
}

func newAPIClient(token string) *apiClient {
	return &apiClient{token: token, http: &http.Client{Timeout: 10 * time.Second}}
}

type listEnvelope struct {
	Success     bool              `json:"success"`
	Count       int64             `json:"count"`
	TotalPages  int               `json:"totalPages"`
	CurrentPage int               `json:"currentPage"`
	Data        []json.RawMessage `json:"data"`
	Error       json.RawMessage   `json:"error"`
}

// errorText renders the error field, a string or a list of strings.
func errorText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return string(raw)
}

func (c *apiClient) list(ctx context.Context, rawURL string, toRow rowFunc) (*listPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	var env listEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("unexpected response (%d)", resp.StatusCode)
	}
	if !env.Success {
		return nil, fmt.Errorf("%d: %s", resp.StatusCode, errorText(env.Error))
	}

	page := &listPage{Count: env.Count, TotalPages: env.TotalPages, CurrentPage: env.CurrentPage}
	for _, raw := range env.Data {
		row, err := toRow(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode item: %w", err)
		}
		page.Rows = append(page.Rows, row)
	}
	return page, nil
}
