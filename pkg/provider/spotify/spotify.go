// Package spotify resolves a free-text music query to a track using the
// Spotify Web API with client-credentials authentication.
package spotify

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"edutune/pkg/config"
	"edutune/pkg/provider/internal/httpjson"
	providertypes "edutune/pkg/provider/types"
)

const (
	serviceName       = "spotify"
	defaultTokenURL   = "https://accounts.spotify.com/api/token"
	defaultAPIBaseURL = "https://api.spotify.com"
)

// Client searches Spotify tracks. The access token is fetched lazily and
// reused until it expires.
type Client struct {
	configured bool
	apiBaseURL string
	tokens     oauth2.TokenSource
	http       *httpjson.Client
}

type searchResponse struct {
	Tracks struct {
		Items []track `json:"items"`
	} `json:"tracks"`
}

type track struct {
	Name         string `json:"name"`
	PreviewURL   string `json:"preview_url"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
}

func New(cfg config.SpotifyConfig, timeout time.Duration) *Client {
	clientID := strings.TrimSpace(cfg.ClientID)
	clientSecret := strings.TrimSpace(cfg.ClientSecret)

	tokenURL := strings.TrimSpace(cfg.TokenURL)
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	apiBaseURL := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}

	httpClient := httpjson.New(serviceName, timeout)
	client := &Client{
		configured: clientID != "" && clientSecret != "",
		apiBaseURL: apiBaseURL,
		http:       httpClient,
	}
	if !client.configured {
		return client
	}

	credentials := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient.HTTPClient())
	client.tokens = credentials.TokenSource(tokenCtx)

	return client
}

// Configured reports whether client credentials are present.
func (c *Client) Configured() bool {
	return c.configured
}

// Search returns the best track match for query. Token and search failures
// are both reported as unavailable.
func (c *Client) Search(ctx context.Context, query string) (providertypes.MusicMatch, error) {
	if !c.configured {
		return providertypes.MusicMatch{}, providertypes.Unconfigured(serviceName)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return providertypes.MusicMatch{}, providertypes.NoResult(serviceName)
	}

	token, err := c.tokens.Token()
	if err != nil {
		return providertypes.MusicMatch{}, providertypes.RemoteFailure(serviceName, err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", "1")

	header := http.Header{}
	header.Set("Authorization", token.Type()+" "+token.AccessToken)

	var response searchResponse
	if err := c.http.Get(ctx, c.apiBaseURL+"/v1/search?"+params.Encode(), header, &response); err != nil {
		return providertypes.MusicMatch{}, providertypes.RemoteFailure(serviceName, err)
	}
	if len(response.Tracks.Items) == 0 {
		return providertypes.MusicMatch{}, providertypes.NoResult(serviceName)
	}

	item := response.Tracks.Items[0]
	match := providertypes.MusicMatch{
		Title:      strings.TrimSpace(item.Name),
		Artist:     joinArtists(item),
		URL:        strings.TrimSpace(item.ExternalURLs.Spotify),
		PreviewURL: strings.TrimSpace(item.PreviewURL),
	}
	if match.Title == "" || match.URL == "" {
		return providertypes.MusicMatch{}, providertypes.NoResult(serviceName)
	}

	return match, nil
}

func joinArtists(item track) string {
	names := make([]string, 0, len(item.Artists))
	for _, artist := range item.Artists {
		if name := strings.TrimSpace(artist.Name); name != "" {
			names = append(names, name)
		}
	}

	return strings.Join(names, ", ")
}
