// internal/common/http/client.go
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNotFound is returned by GetBytes for 404 responses.
var ErrNotFound = errors.New("resource not found")

// DefaultMaxBody caps downloaded bodies (templates and photos).
const DefaultMaxBody = 32 << 20

type Client struct {
	httpClient *http.Client
	maxBody    int64
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxBody: DefaultMaxBody,
	}
}

// NewClientWith wraps an existing *http.Client, mainly for httptest servers.
func NewClientWith(hc *http.Client) *Client {
	return &Client{httpClient: hc, maxBody: DefaultMaxBody}
}

// StatusError carries a non-2xx response status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// GetBytes downloads url and returns the body. Non-2xx responses are a
// *StatusError and bodies over the size cap are rejected.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("GET %s: body exceeds %d bytes", url, c.maxBody)
	}
	return body, nil
}
