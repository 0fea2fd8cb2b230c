package aiservice

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"recruit-analysis/internal/llm"
)

const analyzePath = "/api/ai/analyze-cv"

// Client calls the standalone AI scoring service. The service receives the
// raw CV text as the request body and the target as the jobId query param.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a client for the service at baseURL.
func NewClient(baseURL string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("AI_SERVICE_URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("AI_SERVICE_URL invalid: %w", err)
	}
	return &Client{baseURL: baseURL, httpClient: &http.Client{}}, nil
}

// Analyze implements llm.Client.
func (c *Client) Analyze(ctx context.Context, input llm.AnalyzeInput) (llm.Result, error) {
	endpoint := c.baseURL + analyzePath + "?" + url.Values{"jobId": {input.TargetID}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(input.DocumentText))
	if err != nil {
		return llm.Result{}, err
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return llm.Result{}, llm.TransportError("aiservice", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return llm.Result{}, llm.TransportError("aiservice", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return llm.Result{}, llm.StatusError("aiservice", resp.StatusCode, string(body))
	}
	return llm.ParseResult(body)
}

// Ping checks that the service answers at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return llm.TransportError("aiservice", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return llm.StatusError("aiservice", resp.StatusCode, "")
	}
	return nil
}

var _ llm.Client = (*Client)(nil)
