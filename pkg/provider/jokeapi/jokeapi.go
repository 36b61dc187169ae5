package jokeapi

import (
	"context"
	"strings"
	"time"

	"edutune/pkg/config"
	"edutune/pkg/provider/internal/httpjson"
	providertypes "edutune/pkg/provider/types"
)

const (
	serviceName    = "jokeapi"
	defaultBaseURL = "https://v2.jokeapi.dev"
)

// Client fetches single-line jokes from any category.
type Client struct {
	baseURL string
	http    *httpjson.Client
}

type jokeResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Joke    string `json:"joke"`
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

// Joke returns one joke text.
func (c *Client) Joke(ctx context.Context) (string, error) {
	var response jokeResponse
	if err := c.http.Get(ctx, c.baseURL+"/joke/Any?type=single", nil, &response); err != nil {
		return "", providertypes.RemoteFailure(serviceName, err)
	}
	// An error flag in a 200 body means no joke matched the filters.
	joke := strings.TrimSpace(response.Joke)
	if response.Error || joke == "" {
		return "", providertypes.NoResult(serviceName)
	}

	return joke, nil
}
