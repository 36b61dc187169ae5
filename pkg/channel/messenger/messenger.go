// Package messenger implements the Facebook Messenger channel: webhook
// verification, event intake, and replies through the Graph Send API.
package messenger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"edutune/pkg/bus"
	"edutune/pkg/channel"
	"edutune/pkg/config"
)

const (
	channelName         = "messenger"
	defaultGraphBaseURL = "https://graph.facebook.com"
	sendTimeout         = 10 * time.Second
)

// Adapter receives Messenger webhook events, queues them on the message bus,
// and drains the queue one event at a time.
type Adapter struct {
	cfg        config.MessengerConfig
	bus        *bus.MessageBus
	httpClient *http.Client
	log        *slog.Logger
}

// NewAdapter constructs the Messenger adapter. A missing page access token is
// logged but does not prevent the webhook from running.
func NewAdapter(cfg config.MessengerConfig, mb *bus.MessageBus, log *slog.Logger) (*Adapter, error) {
	if mb == nil {
		return nil, errors.New("message bus is required")
	}
	if log == nil {
		log = slog.Default()
	}
	if strings.TrimSpace(cfg.GraphBaseURL) == "" {
		cfg.GraphBaseURL = defaultGraphBaseURL
	}
	cfg.GraphBaseURL = strings.TrimRight(strings.TrimSpace(cfg.GraphBaseURL), "/")
	if strings.TrimSpace(cfg.GraphAPIVersion) == "" {
		cfg.GraphAPIVersion = config.DefaultGraphAPIVersion
	}
	if strings.TrimSpace(cfg.WebhookPath) == "" {
		cfg.WebhookPath = config.DefaultWebhookPath
	}
	if strings.TrimSpace(cfg.VerifyToken) == "" {
		cfg.VerifyToken = config.DefaultVerifyToken
	}

	adapter := &Adapter{
		cfg:        cfg,
		bus:        mb,
		httpClient: &http.Client{Timeout: sendTimeout},
		log:        log.With("component", "channel.messenger"),
	}
	if strings.TrimSpace(cfg.PageAccessToken) == "" {
		adapter.log.Warn("PAGE_ACCESS_TOKEN not set; replies will be rejected by the Graph API")
	}

	return adapter, nil
}

// Name returns the channel identifier used in bus metadata and logs.
func (a *Adapter) Name() string {
	return channelName
}

// Routes mounts the verification and event endpoints on r.
func (a *Adapter) Routes(r chi.Router) {
	r.Get(a.cfg.WebhookPath, a.handleVerify)
	r.Post(a.cfg.WebhookPath, a.handleEvents)
}

// Run drains queued events sequentially until ctx is canceled, so replies to
// one sender go out in the order their messages arrived.
func (a *Adapter) Run(ctx context.Context, handler channel.Handler) error {
	if handler == nil {
		return errors.New("handler is required")
	}

	a.log.Info("Messenger channel started", "webhook_path", a.cfg.WebhookPath)

	for {
		inbound, ok := a.bus.ConsumeInbound(ctx)
		if !ok {
			if ctx.Err() != nil {
				return nil
			}
			return errors.New("messenger inbound queue closed")
		}
		if inbound.Channel != channelName {
			a.log.Debug("Ignoring message for another channel", "channel", inbound.Channel)
			continue
		}

		a.log.Info("Received message", "sender_id", inbound.SenderID, "content", channel.PreviewText(inbound.Content))

		replies := handler(ctx, inbound)
		for _, reply := range replies {
			a.log.Debug("Sending message", "sender_id", inbound.SenderID, "content", channel.Describe(reply))
		}
		channel.Deliver(ctx, a, inbound.SenderID, replies, a.log)
	}
}

func (a *Adapter) sendURL() string {
	return fmt.Sprintf("%s/%s/me/messages", a.cfg.GraphBaseURL, a.cfg.GraphAPIVersion)
}
