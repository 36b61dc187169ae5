package giphy

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"edutune/pkg/config"
	"edutune/pkg/provider/internal/httpjson"
	providertypes "edutune/pkg/provider/types"
)

const (
	serviceName    = "giphy"
	defaultBaseURL = "https://api.giphy.com"
	defaultTag     = "funny"
	defaultRating  = "g"
)

// Client fetches random meme GIFs from Giphy.
type Client struct {
	apiKey  string
	baseURL string
	tag     string
	rating  string
	http    *httpjson.Client
}

type randomResponse struct {
	Data json.RawMessage `json:"data"`
}

type gif struct {
	Images struct {
		Original struct {
			URL string `json:"url"`
		} `json:"original"`
	} `json:"images"`
}

func New(cfg config.GiphyConfig, timeout time.Duration) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	tag := strings.TrimSpace(cfg.Tag)
	if tag == "" {
		tag = defaultTag
	}
	rating := strings.TrimSpace(cfg.Rating)
	if rating == "" {
		rating = defaultRating
	}

	return &Client{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: baseURL,
		tag:     tag,
		rating:  rating,
		http:    httpjson.New(serviceName, timeout),
	}
}

// RandomMeme returns the URL of one general-audience meme image.
func (c *Client) RandomMeme(ctx context.Context) (string, error) {
	if c.apiKey == "" {
		return "", providertypes.Unconfigured(serviceName)
	}

	query := url.Values{}
	query.Set("api_key", c.apiKey)
	query.Set("tag", c.tag)
	query.Set("rating", c.rating)

	var response randomResponse
	if err := c.http.Get(ctx, c.baseURL+"/v1/gifs/random?"+query.Encode(), nil, &response); err != nil {
		return "", providertypes.RemoteFailure(serviceName, err)
	}

	// Giphy answers an empty search with "data": [] instead of an object.
	data := bytes.TrimSpace(response.Data)
	if len(data) == 0 || data[0] != '{' {
		return "", providertypes.NoResult(serviceName)
	}

	var item gif
	if err := json.Unmarshal(data, &item); err != nil {
		return "", providertypes.RemoteFailure(serviceName, err)
	}

	imageURL := strings.TrimSpace(item.Images.Original.URL)
	if imageURL == "" {
		return "", providertypes.NoResult(serviceName)
	}

	return imageURL, nil
}
