package channel

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-chi/chi/v5"

	"edutune/pkg/bus"
)

const messagePreviewLimit = 240

// Handler processes one inbound channel message and returns the ordered
// replies for its sender. It never returns an empty sequence.
type Handler func(context.Context, bus.InboundMessage) []bus.OutboundMessage

// Adapter bridges one external transport (for example Messenger) into EduTune.
type Adapter interface {
	Name() string
	Run(context.Context, Handler) error
}

// Sender delivers one outbound message to a recipient on a platform.
type Sender interface {
	Send(ctx context.Context, recipientID string, msg bus.OutboundMessage) error
}

// WebhookAdapter is an adapter that receives events over the gateway's HTTP
// server instead of polling.
type WebhookAdapter interface {
	Adapter
	Routes(r chi.Router)
}

// Deliver sends msgs to recipientID in order, waiting for each send to finish
// before starting the next. Failures are logged and never stop the sequence.
// It returns the number of messages delivered.
func Deliver(ctx context.Context, sender Sender, recipientID string, msgs []bus.OutboundMessage, log *slog.Logger) int {
	if log == nil {
		log = slog.Default()
	}

	delivered := 0
	for index, msg := range msgs {
		if err := sender.Send(ctx, recipientID, msg); err != nil {
			log.Error("Failed to send message",
				"recipient_id", recipientID,
				"index", index,
				"kind", string(msg.Kind),
				"error", err,
			)
			continue
		}
		delivered++
	}

	return delivered
}

// PreviewText returns a bounded log-safe preview of message text.
func PreviewText(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= messagePreviewLimit {
		return trimmed
	}

	return trimmed[:messagePreviewLimit] + "..."
}

// Describe returns a log preview of msg.
func Describe(msg bus.OutboundMessage) string {
	if msg.IsImage() {
		return "[image] " + msg.ImageURL
	}

	return PreviewText(msg.Text)
}
