// Package command turns raw chat text into a typed command.
package command

// Kind names a command variant. It is used for logs, metrics and events.
type Kind string

const (
	KindHelp          Kind = "help"
	KindAsk           Kind = "ask"
	KindMeme          Kind = "meme"
	KindJoke          Kind = "joke"
	KindJokeWithImage Kind = "joke_image"
	KindQuote         Kind = "quote"
	KindPlay          Kind = "play"
	KindUnknown       Kind = "unknown"
)

// Command is the closed set of commands understood by the assistant. Only the
// types declared in this package implement it.
type Command interface {
	Kind() Kind
	command()
}

// Help asks for the command reference.
type Help struct{}

// Ask requests an AI-generated answer to Question.
type Ask struct {
	Question string
}

// Meme requests a random meme image.
type Meme struct{}

// Joke requests a one-line joke.
type Joke struct{}

// JokeWithImage requests a decorative image followed by a joke.
type JokeWithImage struct{}

// Quote requests a motivational quote.
type Quote struct{}

// Play requests music links for Query.
type Play struct {
	Query string
}

// Unknown carries text that matched no command.
type Unknown struct {
	Text string
}

func (Help) Kind() Kind          { return KindHelp }
func (Ask) Kind() Kind           { return KindAsk }
func (Meme) Kind() Kind          { return KindMeme }
func (Joke) Kind() Kind          { return KindJoke }
func (JokeWithImage) Kind() Kind { return KindJokeWithImage }
func (Quote) Kind() Kind         { return KindQuote }
func (Play) Kind() Kind          { return KindPlay }
func (Unknown) Kind() Kind       { return KindUnknown }

func (Help) command()          {}
func (Ask) command()           {}
func (Meme) command()          {}
func (Joke) command()          {}
func (JokeWithImage) command() {}
func (Quote) command()         {}
func (Play) command()          {}
func (Unknown) command()       {}
