package command

import "strings"

const (
	askPrefix  = "ai:"
	playPrefix = "play:"
)

// Classify maps raw inbound text to exactly one Command.
//
// Keywords match case-insensitively after trimming surrounding whitespace;
// extracted arguments keep their original casing. Rules are checked in order
// and the first match wins. Text that matches nothing becomes Unknown with the
// untouched input.
func Classify(raw string) Command {
	text := strings.TrimSpace(raw)
	lower := strings.ToLower(text)

	switch {
	case lower == "help":
		return Help{}
	case hasPrefixFold(text, askPrefix):
		return Ask{Question: strings.TrimSpace(text[len(askPrefix):])}
	case lower == "meme":
		return Meme{}
	case lower == "joke":
		return Joke{}
	case lower == "jokeimg" || lower == "joke image":
		return JokeWithImage{}
	case lower == "quote":
		return Quote{}
	case hasPrefixFold(text, playPrefix):
		return Play{Query: strings.TrimSpace(text[len(playPrefix):])}
	default:
		return Unknown{Text: raw}
	}
}

// hasPrefixFold is an ASCII case-insensitive prefix check that keeps byte
// offsets valid for slicing the original text.
func hasPrefixFold(text, prefix string) bool {
	return len(text) >= len(prefix) && strings.EqualFold(text[:len(prefix)], prefix)
}
