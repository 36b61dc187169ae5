package command

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Command
	}{
		{name: "help", input: "help", want: Help{}},
		{name: "help upper", input: "HELP", want: Help{}},
		{name: "help title", input: "Help", want: Help{}},
		{name: "help padded", input: "  help  ", want: Help{}},
		{name: "ask", input: "ai: What is photosynthesis?", want: Ask{Question: "What is photosynthesis?"}},
		{name: "ask upper prefix keeps casing", input: "AI:Explain DNA", want: Ask{Question: "Explain DNA"}},
		{name: "ask empty", input: "ai:   ", want: Ask{Question: ""}},
		{name: "meme", input: "Meme", want: Meme{}},
		{name: "joke", input: "joke", want: Joke{}},
		{name: "jokeimg", input: "JOKEIMG", want: JokeWithImage{}},
		{name: "joke image", input: " joke image ", want: JokeWithImage{}},
		{name: "quote", input: "quote", want: Quote{}},
		{name: "play", input: "play: Bohemian Rhapsody", want: Play{Query: "Bohemian Rhapsody"}},
		{name: "play upper prefix", input: "PLAY:imagine", want: Play{Query: "imagine"}},
		{name: "play empty", input: "play:", want: Play{Query: ""}},
		{name: "unknown keeps raw text", input: "  hello there ", want: Unknown{Text: "  hello there "}},
		{name: "keyword with suffix", input: "jokes", want: Unknown{Text: "jokes"}},
		{name: "prefix without colon", input: "play imagine", want: Unknown{Text: "play imagine"}},
		{name: "empty", input: "", want: Unknown{Text: ""}},
		{name: "whitespace only", input: "   ", want: Unknown{Text: "   "}},
		{name: "help with trailing words", input: "help me", want: Unknown{Text: "help me"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.input)
			if got != tt.want {
				t.Fatalf("Classify(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestClassifyKinds(t *testing.T) {
	tests := map[string]Kind{
		"help":       KindHelp,
		"ai: x":      KindAsk,
		"meme":       KindMeme,
		"joke":       KindJoke,
		"joke image": KindJokeWithImage,
		"quote":      KindQuote,
		"play: x":    KindPlay,
		"???":        KindUnknown,
	}

	for input, want := range tests {
		if got := Classify(input).Kind(); got != want {
			t.Fatalf("Classify(%q).Kind() = %q, want %q", input, got, want)
		}
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	inputs := []string{"help", "ai: why is the sky blue", "play: Imagine", "random words", "", "\t\n"}
	for _, input := range inputs {
		if first, second := Classify(input), Classify(input); first != second {
			t.Fatalf("Classify(%q) not stable: %#v vs %#v", input, first, second)
		}
	}
}

func TestClassifyNeverPanicsOnOddInput(t *testing.T) {
	inputs := []string{
		"a",
		"ai",
		"pl",
		"\x00\xff",
		"İ",
		"ai:" + strings.Repeat("x", 10000),
		"plAY: song ",
	}

	for _, input := range inputs {
		if got := Classify(input); got == nil {
			t.Fatalf("Classify(%q) returned nil", input)
		}
	}
}
