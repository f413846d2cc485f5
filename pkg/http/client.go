package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	MethodGet    = http.MethodGet
	MethodPost   = http.MethodPost
	MethodDelete = http.MethodDelete
)

// ClientOption configures Client.
type ClientOption func(*Client)

// RequestOptions holds outbound request parameters. Only JSON APIs are
// targeted, so there is no body support beyond query parameters.
type RequestOptions struct {
	Method      string
	URL         string
	Headers     map[string]string
	QueryParams url.Values
}

// Client is a thin wrapper around http.Client for calling JSON APIs.
type Client struct {
	timeout time.Duration
	client  *http.Client
}

// NewClient creates a new HTTP client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.client = &http.Client{Timeout: c.timeout}
	return c
}

// SendRequest sends the request and returns the raw response.
func (c *Client) SendRequest(ctx context.Context, opts *RequestOptions) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, opts.Method, opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	if len(opts.QueryParams) > 0 {
		q := req.URL.Query()
		for key, values := range opts.QueryParams {
			for _, value := range values {
				q.Add(key, value)
			}
		}
		req.URL.RawQuery = q.Encode()
	}

	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// SendAndParse sends the request and decodes the JSON response into dest.
// Non-2xx responses are returned as an error carrying the body.
func (c *Client) SendAndParse(ctx context.Context, opts *RequestOptions, dest interface{}) error {
	resp, err := c.SendRequest(ctx, opts)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	if dest == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}

	return nil
}

// WithTimeout sets client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}
