// Package httpjson performs the bounded JSON GET requests shared by the
// keyless content providers.
package httpjson

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	maxBodyBytes    = 1 << 20
	errorBodyLimit  = 200
	defaultTimeout  = 10 * time.Second
	acceptMediaType = "application/json"
)

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}

	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) HTTPStatus() int {
	return e.StatusCode
}

// Client issues GET requests and decodes JSON responses for one named service.
type Client struct {
	service    string
	httpClient *http.Client
}

// New builds a client whose requests are bounded by timeout.
func New(service string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		service:    service,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// HTTPClient exposes the underlying client so callers can share its timeout.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Get fetches rawURL and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header, out any) error {
	log := slog.Default().With("component", "provider."+c.service, "operation", "get")
	startedAt := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", acceptMediaType)
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	endpoint := req.URL.Host + req.URL.Path
	log.Debug("provider request started", "endpoint", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug("provider request failed", "endpoint", endpoint, "duration_ms", time.Since(startedAt).Milliseconds(), "error", err)
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Debug("provider request failed", "endpoint", endpoint, "duration_ms", time.Since(startedAt).Milliseconds(), "error", err)
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body))}
		log.Debug("provider request failed", "endpoint", endpoint, "duration_ms", time.Since(startedAt).Milliseconds(), "status", resp.StatusCode)
		return statusErr
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			log.Debug("provider request failed", "endpoint", endpoint, "duration_ms", time.Since(startedAt).Milliseconds(), "error", err)
			return fmt.Errorf("decode response: %w", err)
		}
	}
	log.Debug("provider request completed", "endpoint", endpoint, "duration_ms", time.Since(startedAt).Milliseconds(), "status", resp.StatusCode)

	return nil
}

func truncate(body string) string {
	body = strings.TrimSpace(body)
	if len(body) <= errorBodyLimit {
		return body
	}

	return body[:errorBodyLimit] + "..."
}
