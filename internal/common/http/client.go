// internal/common/http/client.go
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxBodyBytes bounds how much of a response body is read into memory.
const maxBodyBytes = 10 << 20

type Client struct {
	httpClient *http.Client
}

// Response is a fully read reply.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewClientWithTransport builds a Client over rt.
func NewClientWithTransport(timeout time.Duration, rt http.RoundTripper) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: rt,
		},
	}
}

// Get issues a GET with an Accept: application/json header and reads the body.
// Non-2xx statuses are not errors; callers inspect Response.StatusCode.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
