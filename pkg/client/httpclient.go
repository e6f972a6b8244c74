package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxResponseBody caps how much of an upstream reply is buffered.
const maxResponseBody = 1 << 20

type HttpClient struct {
	BaseURL    string
	HTTPClient *http.Client
	headers    http.Header
}

type Option func(*HttpClient)

// WithBearerToken authenticates every request. An empty token is ignored.
func WithBearerToken(token string) Option {
	return func(c *HttpClient) {
		if token != "" {
			c.headers.Set("Authorization", "Bearer "+token)
		}
	}
}

func WithUserAgent(agent string) Option {
	return func(c *HttpClient) {
		c.headers.Set("User-Agent", agent)
	}
}

func NewHttpClient(baseURL string, timeout time.Duration, opts ...Option) *HttpClient {
	c := &HttpClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
		headers:    http.Header{"Accept": []string{"application/json"}},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Response struct {
	*http.Response
	Body []byte
}

func (r *Response) DecodeJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

func (c *HttpClient) GET(ctx context.Context, path string, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, headers)
}

func (c *HttpClient) do(ctx context.Context, method, path string, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = c.headers.Clone()
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{Response: resp, Body: body}, nil
}

// GetErrorMessage pulls a human-readable reason out of an error reply,
// understanding both the {error: {message}} envelope and flat bodies.
func GetErrorMessage(resp *Response) string {
	var flat struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
		Code    string          `json:"code"`
	}
	if err := resp.DecodeJSON(&flat); err != nil {
		return fmt.Sprintf("status %d", resp.StatusCode)
	}

	if flat.Message != "" {
		return flat.Message
	}
	if len(flat.Error) > 0 {
		var s string
		if json.Unmarshal(flat.Error, &s) == nil && s != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(flat.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
	}
	if flat.Code != "" {
		return flat.Code
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
