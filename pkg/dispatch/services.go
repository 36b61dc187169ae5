package dispatch

import (
	"context"

	providertypes "edutune/pkg/provider/types"
)

// AnswerService generates an answer to a free-form question.
type AnswerService interface {
	Configured() bool
	Answer(ctx context.Context, question string) (string, error)
}

// MemeService returns the URL of a random meme image.
type MemeService interface {
	RandomMeme(ctx context.Context) (string, error)
}

// JokeService returns a single-line joke.
type JokeService interface {
	Joke(ctx context.Context) (string, error)
}

// QuoteService returns a motivational quote.
type QuoteService interface {
	Quote(ctx context.Context) (providertypes.Quote, error)
}

// MusicService resolves a free-text query to a track.
type MusicService interface {
	Search(ctx context.Context, query string) (providertypes.MusicMatch, error)
}

// SearchLinker builds a search-page URL for a music query. It never fails.
type SearchLinker interface {
	SearchURL(query string) string
}

// ImageSource builds a decorative image URL. It never fails.
type ImageSource interface {
	ImageURL() string
}

// Services bundles the content adapters used to fulfil commands. A nil
// service is treated as unconfigured.
type Services struct {
	Answers AnswerService
	Memes   MemeService
	Jokes   JokeService
	Quotes  QuoteService
	Music   MusicService
	Links   SearchLinker
	Images  ImageSource
}
