package dispatch

// HelpText lists the supported commands.
const HelpText = "Commands:\n" +
	"help\n" +
	"ai: <question>\n" +
	"meme\n" +
	"joke\n" +
	"jokeimg\n" +
	"quote\n" +
	"play: <song name>   (returns YouTube link + Spotify if available)"

const (
	msgAskUnconfigured  = "OpenAI key not set. Add OPENAI_API_KEY to .env."
	msgAskUsage         = "Please type: ai: <your question>"
	msgAskNoResult      = "I couldn't generate an answer."
	msgAskRemote        = "AI service error. Try again later."
	msgMemeUnconfigured = "GIPHY key not set. Add GIPHY_API_KEY to .env."
	msgMemeFailed       = "Couldn't fetch meme right now."
	msgJokeNoResult     = "No jokes right now."
	msgJokeRemote       = "Error fetching joke."
	msgQuoteNoResult    = "No quote available."
	msgQuoteRemote      = "Error fetching quote."
	msgPlayUsage        = "Please type: play: <song name>"
	msgUnknown          = "I didn't understand — type 'help' to see commands."
	msgInternal         = "Something went wrong. Please try again."

	unknownAuthor = "Unknown"
)
