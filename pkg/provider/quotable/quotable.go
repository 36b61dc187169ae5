package quotable

import (
	"context"
	"strings"
	"time"

	"edutune/pkg/config"
	"edutune/pkg/provider/internal/httpjson"
	providertypes "edutune/pkg/provider/types"
)

const (
	serviceName    = "quotable"
	defaultBaseURL = "https://api.quotable.io"
	defaultTag     = "motivational"
)

// Client fetches motivational quotes.
type Client struct {
	baseURL string
	http    *httpjson.Client
}

type quoteResponse struct {
	Content string `json:"content"`
	Author  string `json:"author"`
}

func New(cfg config.EndpointConfig, timeout time.Duration) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		http:    httpjson.New(serviceName, timeout),
	}
}

// Quote returns one random quote. The author is passed through as-is and may
// be empty.
func (c *Client) Quote(ctx context.Context) (providertypes.Quote, error) {
	var response quoteResponse
	if err := c.http.Get(ctx, c.baseURL+"/random?tags="+defaultTag, nil, &response); err != nil {
		return providertypes.Quote{}, providertypes.RemoteFailure(serviceName, err)
	}

	content := strings.TrimSpace(response.Content)
	if content == "" {
		return providertypes.Quote{}, providertypes.NoResult(serviceName)
	}

	return providertypes.Quote{
		Content: content,
		Author:  strings.TrimSpace(response.Author),
	}, nil
}
