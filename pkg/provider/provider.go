package provider

import (
	"log/slog"
	"time"

	"edutune/pkg/config"
	"edutune/pkg/dispatch"
	"edutune/pkg/provider/giphy"
	"edutune/pkg/provider/jokeapi"
	provideropenai "edutune/pkg/provider/openai"
	"edutune/pkg/provider/picsum"
	"edutune/pkg/provider/quotable"
	"edutune/pkg/provider/spotify"
	"edutune/pkg/provider/youtube"
)

// NewServices builds every content adapter from cfg. Adapters whose
// credentials are missing are still constructed and report unconfigured.
func NewServices(cfg *config.Config) dispatch.Services {
	if cfg == nil {
		cfg = config.Default()
	}

	services := cfg.Services
	timeout := time.Duration(services.RequestTimeoutSeconds) * time.Second

	slog.Default().With("component", "provider.factory").Debug("Resolving content services",
		"timeout_seconds", services.RequestTimeoutSeconds,
		"capabilities", cfg.Capabilities(),
	)

	return dispatch.Services{
		Answers: provideropenai.New(services.OpenAI, timeout),
		Memes:   giphy.New(services.Giphy, timeout),
		Jokes:   jokeapi.New(services.JokeAPI, timeout),
		Quotes:  quotable.New(services.Quotable, timeout),
		Music:   spotify.New(services.Spotify, timeout),
		Links:   youtube.New(services.YouTube),
		Images:  picsum.New(),
	}
}
