// Package dispatch turns classified commands into reply sequences. Every
// adapter outcome, including a panic, is converted into user-facing text so a
// dispatch never returns an empty sequence.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"edutune/pkg/bus"
	"edutune/pkg/command"
	providertypes "edutune/pkg/provider/types"
)

// Dispatcher executes commands against the configured content services.
type Dispatcher struct {
	svc Services
	log *slog.Logger
}

func New(svc Services, log *slog.Logger) (*Dispatcher, error) {
	if svc.Links == nil {
		return nil, errors.New("search linker is required")
	}
	if svc.Images == nil {
		return nil, errors.New("image source is required")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Dispatcher{
		svc: svc,
		log: log.With("component", "dispatch.dispatcher"),
	}, nil
}

// Dispatch executes cmd for senderID and returns at least one message.
func (d *Dispatcher) Dispatch(ctx context.Context, senderID string, cmd command.Command) (replies []bus.OutboundMessage) {
	log := d.log.With("sender_id", senderID)

	defer func() {
		if recovered := recover(); recovered != nil {
			log.Error("Command dispatch panicked", "panic", fmt.Sprint(recovered))
			replies = []bus.OutboundMessage{bus.Text(msgInternal)}
		}
	}()

	if cmd == nil {
		cmd = command.Unknown{}
	}
	log = log.With("command", string(cmd.Kind()))

	switch c := cmd.(type) {
	case command.Help:
		replies = []bus.OutboundMessage{bus.Text(HelpText)}
	case command.Ask:
		replies = []bus.OutboundMessage{d.ask(ctx, log, c.Question)}
	case command.Meme:
		replies = []bus.OutboundMessage{d.meme(ctx, log)}
	case command.Joke:
		replies = []bus.OutboundMessage{bus.Text(d.joke(ctx, log))}
	case command.JokeWithImage:
		replies = []bus.OutboundMessage{
			bus.Image(d.svc.Images.ImageURL()),
			bus.Text(d.joke(ctx, log)),
		}
	case command.Quote:
		replies = []bus.OutboundMessage{bus.Text(d.quote(ctx, log))}
	case command.Play:
		replies = []bus.OutboundMessage{bus.Text(d.play(ctx, log, c.Query))}
	case command.Unknown:
		replies = []bus.OutboundMessage{bus.Text(msgUnknown)}
	default:
		panic(fmt.Sprintf("unhandled command type %T", cmd))
	}

	if len(replies) == 0 {
		replies = []bus.OutboundMessage{bus.Text(msgInternal)}
	}

	return replies
}

func (d *Dispatcher) ask(ctx context.Context, log *slog.Logger, question string) bus.OutboundMessage {
	if d.svc.Answers == nil || !d.svc.Answers.Configured() {
		logUnavailable(log, providertypes.Unconfigured("openai"))
		return bus.Text(msgAskUnconfigured)
	}
	if strings.TrimSpace(question) == "" {
		return bus.Text(msgAskUsage)
	}

	answer, err := call(func() (string, error) { return d.svc.Answers.Answer(ctx, question) }, "openai")
	if err != nil {
		logUnavailable(log, err)
		switch providertypes.ReasonOf(err) {
		case providertypes.ReasonUnconfigured:
			return bus.Text(msgAskUnconfigured)
		case providertypes.ReasonNoResult:
			return bus.Text(msgAskNoResult)
		default:
			return bus.Text(msgAskRemote)
		}
	}

	return bus.Text(answer)
}

func (d *Dispatcher) meme(ctx context.Context, log *slog.Logger) bus.OutboundMessage {
	if d.svc.Memes == nil {
		logUnavailable(log, providertypes.Unconfigured("giphy"))
		return bus.Text(msgMemeUnconfigured)
	}

	imageURL, err := call(func() (string, error) { return d.svc.Memes.RandomMeme(ctx) }, "giphy")
	if err == nil && strings.TrimSpace(imageURL) == "" {
		err = providertypes.NoResult("giphy")
	}
	if err != nil {
		logUnavailable(log, err)
		if errors.Is(err, providertypes.ErrUnconfigured) {
			return bus.Text(msgMemeUnconfigured)
		}
		return bus.Text(msgMemeFailed)
	}

	return bus.Image(imageURL)
}

func (d *Dispatcher) joke(ctx context.Context, log *slog.Logger) string {
	if d.svc.Jokes == nil {
		logUnavailable(log, providertypes.Unconfigured("jokeapi"))
		return msgJokeRemote
	}

	joke, err := call(func() (string, error) { return d.svc.Jokes.Joke(ctx) }, "jokeapi")
	if err == nil && strings.TrimSpace(joke) == "" {
		err = providertypes.NoResult("jokeapi")
	}
	if err != nil {
		logUnavailable(log, err)
		if errors.Is(err, providertypes.ErrNoResult) {
			return msgJokeNoResult
		}
		return msgJokeRemote
	}

	return joke
}

func (d *Dispatcher) quote(ctx context.Context, log *slog.Logger) string {
	if d.svc.Quotes == nil {
		logUnavailable(log, providertypes.Unconfigured("quotable"))
		return msgQuoteRemote
	}

	quote, err := call(func() (providertypes.Quote, error) { return d.svc.Quotes.Quote(ctx) }, "quotable")
	if err == nil && strings.TrimSpace(quote.Content) == "" {
		err = providertypes.NoResult("quotable")
	}
	if err != nil {
		logUnavailable(log, err)
		if errors.Is(err, providertypes.ErrNoResult) {
			return msgQuoteNoResult
		}
		return msgQuoteRemote
	}

	author := strings.TrimSpace(quote.Author)
	if author == "" {
		author = unknownAuthor
	}

	return fmt.Sprintf("💡 %s\n— %s", quote.Content, author)
}

func (d *Dispatcher) play(ctx context.Context, log *slog.Logger, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return msgPlayUsage
	}

	searchURL := d.svc.Links.SearchURL(query)

	if d.svc.Music == nil {
		logUnavailable(log, providertypes.Unconfigured("spotify"))
		return formatSearchOnly(searchURL)
	}

	match, err := call(func() (providertypes.MusicMatch, error) { return d.svc.Music.Search(ctx, query) }, "spotify")
	if err != nil {
		logUnavailable(log, err)
		return formatSearchOnly(searchURL)
	}

	return formatMatch(match, searchURL)
}

func formatMatch(match providertypes.MusicMatch, searchURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎵 %s — %s\nSpotify: %s\nYouTube search: %s", match.Title, match.Artist, match.URL, searchURL)
	if preview := strings.TrimSpace(match.PreviewURL); preview != "" {
		fmt.Fprintf(&b, "\nPreview: %s", preview)
	}

	return b.String()
}

func formatSearchOnly(searchURL string) string {
	return "🎵 Could not find Spotify track. Try YouTube: " + searchURL
}

// call runs one adapter invocation and converts a panic into a remote
// failure so the other invocations of the same command still run.
func call[T any](fn func() (T, error), service string) (value T, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			var zero T
			value = zero
			err = providertypes.RemoteFailure(service, fmt.Errorf("panic: %v", recovered))
		}
	}()

	return fn()
}

func logUnavailable(log *slog.Logger, err error) {
	service := ""
	var unavailable *providertypes.UnavailableError
	if errors.As(err, &unavailable) {
		service = unavailable.Service
	}

	switch providertypes.ReasonOf(err) {
	case providertypes.ReasonUnconfigured:
		log.Warn("Capability not configured", "service", service)
	case providertypes.ReasonNoResult:
		log.Debug("Service returned no result", "service", service)
	default:
		attrs := []any{"service", service, "error", err}
		if status := providertypes.HTTPStatus(err); status != 0 {
			attrs = append(attrs, "status", status)
		}
		log.Error("Service call failed", attrs...)
	}
}
