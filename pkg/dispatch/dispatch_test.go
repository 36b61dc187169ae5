package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"edutune/pkg/bus"
	"edutune/pkg/command"
	"edutune/pkg/logger"
	providertypes "edutune/pkg/provider/types"
)

type fakeAnswers struct {
	configured bool
	answer     string
	err        error
	calls      int
}

func (f *fakeAnswers) Configured() bool { return f.configured }

func (f *fakeAnswers) Answer(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.answer, f.err
}

type fakeMemes struct {
	url   string
	err   error
	calls int
}

func (f *fakeMemes) RandomMeme(context.Context) (string, error) {
	f.calls++
	return f.url, f.err
}

type fakeJokes struct {
	joke  string
	err   error
	panic bool
}

func (f *fakeJokes) Joke(context.Context) (string, error) {
	if f.panic {
		panic("joke adapter exploded")
	}
	return f.joke, f.err
}

type fakeQuotes struct {
	quote providertypes.Quote
	err   error
}

func (f *fakeQuotes) Quote(context.Context) (providertypes.Quote, error) {
	return f.quote, f.err
}

type fakeMusic struct {
	match providertypes.MusicMatch
	err   error
	calls int
	query string
}

func (f *fakeMusic) Search(_ context.Context, query string) (providertypes.MusicMatch, error) {
	f.calls++
	f.query = query
	return f.match, f.err
}

type fakeLinks struct{}

func (fakeLinks) SearchURL(query string) string {
	return "https://www.youtube.com/results?search_query=" + strings.ReplaceAll(query, " ", "%20")
}

type fixedImage string

func (f fixedImage) ImageURL() string { return string(f) }

func newDispatcher(t *testing.T, svc Services) *Dispatcher {
	t.Helper()

	if svc.Links == nil {
		svc.Links = fakeLinks{}
	}
	if svc.Images == nil {
		svc.Images = fixedImage("https://picsum.photos/600/400?random=7")
	}

	d, err := New(svc, logger.Discard())
	require.NoError(t, err)
	return d
}

func texts(t *testing.T, replies []bus.OutboundMessage) []string {
	t.Helper()

	out := make([]string, 0, len(replies))
	for _, reply := range replies {
		require.Equal(t, bus.KindText, reply.Kind, "reply %+v", reply)
		out = append(out, reply.Text)
	}
	return out
}

func TestNewRequiresInfallibleSources(t *testing.T) {
	if _, err := New(Services{Images: fixedImage("x")}, nil); err == nil {
		t.Fatal("expected error without search linker")
	}
	if _, err := New(Services{Links: fakeLinks{}}, nil); err == nil {
		t.Fatal("expected error without image source")
	}
}

func TestDispatchHelpAndUnknown(t *testing.T) {
	d := newDispatcher(t, Services{})

	help := d.Dispatch(context.Background(), "1", command.Help{})
	require.Equal(t, []string{HelpText}, texts(t, help))

	unknown := d.Dispatch(context.Background(), "1", command.Unknown{Text: "hello there"})
	require.Equal(t, []string{msgUnknown}, texts(t, unknown))
}

func TestDispatchAsk(t *testing.T) {
	tests := []struct {
		name      string
		answers   *fakeAnswers
		question  string
		want      string
		wantCalls int
	}{
		{name: "unconfigured", answers: &fakeAnswers{}, question: "why?", want: msgAskUnconfigured},
		{name: "empty question", answers: &fakeAnswers{configured: true}, question: "", want: msgAskUsage},
		{name: "answer", answers: &fakeAnswers{configured: true, answer: "Because."}, question: "why?", want: "Because.", wantCalls: 1},
		{name: "no result", answers: &fakeAnswers{configured: true, err: providertypes.NoResult("openai")}, question: "why?", want: msgAskNoResult, wantCalls: 1},
		{name: "remote", answers: &fakeAnswers{configured: true, err: providertypes.RemoteFailure("openai", errors.New("503"))}, question: "why?", want: msgAskRemote, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDispatcher(t, Services{Answers: tt.answers})

			replies := d.Dispatch(context.Background(), "1", command.Ask{Question: tt.question})
			require.Equal(t, []string{tt.want}, texts(t, replies))
			require.Equal(t, tt.wantCalls, tt.answers.calls)
		})
	}
}

func TestDispatchAskWithoutService(t *testing.T) {
	d := newDispatcher(t, Services{})

	replies := d.Dispatch(context.Background(), "1", command.Ask{Question: "hi"})
	require.Equal(t, []string{msgAskUnconfigured}, texts(t, replies))
}

func TestDispatchMeme(t *testing.T) {
	t.Run("image", func(t *testing.T) {
		d := newDispatcher(t, Services{Memes: &fakeMemes{url: "https://media.giphy.com/a.gif"}})

		replies := d.Dispatch(context.Background(), "1", command.Meme{})
		require.Equal(t, []bus.OutboundMessage{bus.Image("https://media.giphy.com/a.gif")}, replies)
	})

	tests := []struct {
		name string
		svc  MemeService
		want string
	}{
		{name: "no service", svc: nil, want: msgMemeUnconfigured},
		{name: "unconfigured", svc: &fakeMemes{err: providertypes.Unconfigured("giphy")}, want: msgMemeUnconfigured},
		{name: "empty url", svc: &fakeMemes{}, want: msgMemeFailed},
		{name: "remote", svc: &fakeMemes{err: providertypes.RemoteFailure("giphy", errors.New("timeout"))}, want: msgMemeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDispatcher(t, Services{Memes: tt.svc})

			replies := d.Dispatch(context.Background(), "1", command.Meme{})
			require.Equal(t, []string{tt.want}, texts(t, replies))
		})
	}
}

func TestDispatchJoke(t *testing.T) {
	tests := []struct {
		name  string
		jokes JokeService
		want  string
	}{
		{name: "joke", jokes: &fakeJokes{joke: "Why did the chicken cross the road?"}, want: "Why did the chicken cross the road?"},
		{name: "no result", jokes: &fakeJokes{err: providertypes.NoResult("jokeapi")}, want: msgJokeNoResult},
		{name: "remote", jokes: &fakeJokes{err: providertypes.RemoteFailure("jokeapi", errors.New("500"))}, want: msgJokeRemote},
		{name: "panic", jokes: &fakeJokes{panic: true}, want: msgJokeRemote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDispatcher(t, Services{Jokes: tt.jokes})

			replies := d.Dispatch(context.Background(), "1", command.Joke{})
			require.Equal(t, []string{tt.want}, texts(t, replies))
		})
	}
}

type statusFailure int

func (e statusFailure) Error() string   { return "unexpected status" }
func (e statusFailure) HTTPStatus() int { return int(e) }

func TestDispatchLogsRemoteStatus(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	d, err := New(Services{
		Jokes:  &fakeJokes{err: providertypes.RemoteFailure("jokeapi", statusFailure(503))},
		Links:  fakeLinks{},
		Images: fixedImage("https://picsum.photos/600/400?random=1"),
	}, log)
	require.NoError(t, err)

	d.Dispatch(context.Background(), "1", command.Joke{})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "Service call failed", entry["msg"])
	require.Equal(t, "jokeapi", entry["service"])
	require.EqualValues(t, 503, entry["status"])
}

func TestDispatchJokeWithImageAlwaysEmitsImageThenText(t *testing.T) {
	const imageURL = "https://picsum.photos/600/400?random=7"

	tests := []struct {
		name     string
		jokes    JokeService
		wantText string
	}{
		{name: "joke", jokes: &fakeJokes{joke: "A pun walks into a bar."}, wantText: "A pun walks into a bar."},
		{name: "unavailable", jokes: &fakeJokes{err: providertypes.RemoteFailure("jokeapi", errors.New("down"))}, wantText: msgJokeRemote},
		{name: "panic", jokes: &fakeJokes{panic: true}, wantText: msgJokeRemote},
		{name: "no service", jokes: nil, wantText: msgJokeRemote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDispatcher(t, Services{Jokes: tt.jokes, Images: fixedImage(imageURL)})

			replies := d.Dispatch(context.Background(), "1", command.JokeWithImage{})
			require.Equal(t, []bus.OutboundMessage{bus.Image(imageURL), bus.Text(tt.wantText)}, replies)
		})
	}
}

func TestDispatchQuote(t *testing.T) {
	tests := []struct {
		name   string
		quotes QuoteService
		want   string
	}{
		{
			name:   "with author",
			quotes: &fakeQuotes{quote: providertypes.Quote{Content: "Keep going.", Author: "Ada"}},
			want:   "💡 Keep going.\n— Ada",
		},
		{
			name:   "without author",
			quotes: &fakeQuotes{quote: providertypes.Quote{Content: "Keep going."}},
			want:   "💡 Keep going.\n— Unknown",
		},
		{name: "no result", quotes: &fakeQuotes{err: providertypes.NoResult("quotable")}, want: msgQuoteNoResult},
		{name: "remote", quotes: &fakeQuotes{err: errors.New("certificate expired")}, want: msgQuoteRemote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDispatcher(t, Services{Quotes: tt.quotes})

			replies := d.Dispatch(context.Background(), "1", command.Quote{})
			require.Equal(t, []string{tt.want}, texts(t, replies))
		})
	}
}

func TestDispatchPlayEmptyQueryDoesNotCallAdapter(t *testing.T) {
	music := &fakeMusic{}
	d := newDispatcher(t, Services{Music: music})

	replies := d.Dispatch(context.Background(), "1", command.Play{Query: "  "})
	require.Equal(t, []string{msgPlayUsage}, texts(t, replies))
	require.Zero(t, music.calls)
}

func TestDispatchPlayMatch(t *testing.T) {
	music := &fakeMusic{match: providertypes.MusicMatch{
		Title:  "Imagine",
		Artist: "John Lennon",
		URL:    "https://open.spotify.com/track/imagine",
	}}
	d := newDispatcher(t, Services{Music: music})

	replies := d.Dispatch(context.Background(), "1", command.Play{Query: "Imagine"})
	got := texts(t, replies)
	require.Len(t, got, 1)
	require.Equal(t,
		"🎵 Imagine — John Lennon\nSpotify: https://open.spotify.com/track/imagine\nYouTube search: https://www.youtube.com/results?search_query=Imagine",
		got[0],
	)
	require.Equal(t, "Imagine", music.query)
}

func TestDispatchPlayMatchWithPreview(t *testing.T) {
	music := &fakeMusic{match: providertypes.MusicMatch{
		Title:      "Imagine",
		Artist:     "John Lennon",
		URL:        "https://open.spotify.com/track/imagine",
		PreviewURL: "https://p.scdn.co/preview",
	}}
	d := newDispatcher(t, Services{Music: music})

	got := texts(t, d.Dispatch(context.Background(), "1", command.Play{Query: "Imagine"}))
	require.True(t, strings.HasSuffix(got[0], "\nPreview: https://p.scdn.co/preview"), "reply = %q", got[0])
}

func TestDispatchPlayFallsBackToSearchLink(t *testing.T) {
	tests := []struct {
		name  string
		music MusicService
	}{
		{name: "no match", music: &fakeMusic{err: providertypes.NoResult("spotify")}},
		{name: "token failure", music: &fakeMusic{err: providertypes.RemoteFailure("spotify", errors.New("401"))}},
		{name: "unconfigured", music: &fakeMusic{err: providertypes.Unconfigured("spotify")}},
		{name: "no service", music: nil},
	}

	want := "🎵 Could not find Spotify track. Try YouTube: https://www.youtube.com/results?search_query=xyz123nonexistent"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDispatcher(t, Services{Music: tt.music})

			replies := d.Dispatch(context.Background(), "1", command.Play{Query: "xyz123nonexistent"})
			require.Equal(t, []string{want}, texts(t, replies))
			require.NotContains(t, replies[0].Text, "Spotify:")
		})
	}
}

type panickyLinks struct{}

func (panickyLinks) SearchURL(string) string { panic("linker exploded") }

func TestDispatchRecoversFromPanic(t *testing.T) {
	d := newDispatcher(t, Services{Links: panickyLinks{}})

	replies := d.Dispatch(context.Background(), "1", command.Play{Query: "Imagine"})
	require.Equal(t, []string{msgInternal}, texts(t, replies))
}

func TestDispatchNilCommand(t *testing.T) {
	d := newDispatcher(t, Services{})

	replies := d.Dispatch(context.Background(), "1", nil)
	require.Equal(t, []string{msgUnknown}, texts(t, replies))
}

func TestDispatchEveryCommandYieldsReplies(t *testing.T) {
	d := newDispatcher(t, Services{})

	for _, raw := range []string{"help", "ai: hi", "ai:", "meme", "joke", "jokeimg", "quote", "play: x", "play:", "???", ""} {
		replies := d.Dispatch(context.Background(), "1", command.Classify(raw))
		if len(replies) == 0 {
			t.Fatalf("Dispatch(Classify(%q)) returned no replies", raw)
		}
	}
}
