// Package youtube builds YouTube search links for music queries.
package youtube

import (
	"net/url"
	"strings"

	"edutune/pkg/config"
)

const searchBaseURL = "https://www.youtube.com/results?search_query="

// Linker produces search-result URLs. It never calls the network.
type Linker struct {
	// apiKey is accepted for a future Data API lookup; links are identical
	// whether or not it is set.
	apiKey string
}

func New(cfg config.YouTubeConfig) *Linker {
	return &Linker{apiKey: strings.TrimSpace(cfg.APIKey)}
}

// SearchURL returns the search page URL for query, percent-encoded the same
// way as encodeURIComponent.
func (l *Linker) SearchURL(query string) string {
	return searchBaseURL + escapeComponent(query)
}

func escapeComponent(value string) string {
	escaped := url.QueryEscape(value)
	escaped = strings.ReplaceAll(escaped, "+", "%20")

	// encodeURIComponent leaves these unreserved marks alone.
	for encoded, raw := range map[string]string{
		"%21": "!", "%27": "'", "%28": "(", "%29": ")", "%2A": "*",
	} {
		escaped = strings.ReplaceAll(escaped, encoded, raw)
	}

	return escaped
}
