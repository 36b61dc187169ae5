/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"edutune/pkg/bus"
	"edutune/pkg/channel"
	"edutune/pkg/command"
	"edutune/pkg/config"
	"edutune/pkg/dispatch"
	"edutune/pkg/logger"
	"edutune/pkg/provider"
	"edutune/pkg/ui/chat"
)

const consoleRecipient = "console"

var (
	chatText  string
	plainChat bool
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat [text]",
	Short: "Run one command or start an interactive chat",
	Long:  "Runs the command router locally against the configured content services, either once or as an interactive terminal chat.",
	Run: func(cmd *cobra.Command, args []string) {
		text := resolveText(args)

		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Printf("failed to load config: %v\n", err)
			return
		}

		appLogger, err := logger.New(cfg.Logging)
		if err != nil {
			fmt.Printf("failed to initialize logger: %v\n", err)
			return
		}
		if !plainChat {
			// Log lines would corrupt the terminal UI.
			appLogger = logger.Discard()
		}
		slog.SetDefault(appLogger)

		dispatcher, err := dispatch.New(provider.NewServices(cfg), appLogger)
		if err != nil {
			fmt.Printf("failed to initialize dispatcher: %v\n", err)
			return
		}

		ctx := context.Background()
		replyFn := localReplies(dispatcher)
		info := chat.RuntimeInfo{Capabilities: cfg.Capabilities()}

		switch {
		case text != "" && plainChat:
			channel.Deliver(ctx, consoleSender{out: os.Stdout}, consoleRecipient, replyFn(ctx, text), appLogger)
		case text != "":
			if err := chat.RunOneShot(ctx, replyFn, text, info); err != nil {
				fmt.Printf("chat failed: %v\n", err)
			}
		default:
			if err := chat.RunInteractive(ctx, replyFn, info); err != nil {
				fmt.Printf("chat failed: %v\n", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVarP(&chatText, "text", "t", "", "command text to send")
	chatCmd.Flags().BoolVar(&plainChat, "plain", false, "print replies as plain text instead of the terminal UI")
}

func resolveText(args []string) string {
	if value := strings.TrimSpace(chatText); value != "" {
		return value
	}

	if len(args) == 0 {
		return ""
	}

	return strings.TrimSpace(strings.Join(args, " "))
}

func localReplies(dispatcher *dispatch.Dispatcher) chat.ReplyFunc {
	return func(ctx context.Context, text string) []bus.OutboundMessage {
		return dispatcher.Dispatch(ctx, consoleRecipient, command.Classify(text))
	}
}

// consoleSender prints replies to a terminal, one block per message.
type consoleSender struct {
	out io.Writer
}

func (s consoleSender) Send(_ context.Context, _ string, msg bus.OutboundMessage) error {
	if msg.IsImage() {
		_, err := fmt.Fprintf(s.out, "🖼  %s\n\n", msg.ImageURL)
		return err
	}

	lines := replyLines(msg.Text)
	for _, line := range lines {
		if _, err := fmt.Fprintf(s.out, "🎓 %s\n", line); err != nil {
			return err
		}
	}
	if len(lines) > 0 {
		_, err := fmt.Fprintln(s.out)
		return err
	}

	return nil
}

func replyLines(message string) []string {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return nil
	}

	return strings.Split(trimmed, "\n")
}
