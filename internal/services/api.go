// API client for making raw HTTP requests to the Spotify Web API
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxResponseSize caps how much of an upstream body is read.
const maxResponseSize = 8 << 20

// APIService provides methods for making raw bearer-authenticated requests to the Web API.
type APIService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates a new API service instance.
//
// An empty baseURL defaults to the public Web API and a nil client to one with a 10s timeout.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
}

// Do performs a request to path (relative to the base URL, query included) with a bearer token.
//
// A non-empty body is sent as JSON. Transport errors are returned as-is; the status code is not interpreted.
func (a *APIService) Do(ctx context.Context, method, path, token string, body []byte) (*APIResponse, error) {
	fullURL := a.baseURL + path

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
		IsJSON:     json.Valid(data),
	}, nil
}
