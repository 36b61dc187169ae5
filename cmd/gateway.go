package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"edutune/pkg/bus"
	"edutune/pkg/channel"
	"edutune/pkg/channel/messenger"
	"edutune/pkg/channel/telegram"
	"edutune/pkg/config"
	"edutune/pkg/dispatch"
	"edutune/pkg/gateway"
	"edutune/pkg/logger"
	"edutune/pkg/provider"
)

const (
	messengerChannelName = "messenger"
	telegramChannelName  = "telegram"
)

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Run the webhook gateway",
	Long:  "Serves the Messenger webhook and any other enabled channels, with health and readiness endpoints.",
	Run: func(cmd *cobra.Command, args []string) {
		_ = args

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
		slog.SetDefault(appLogger)
		log := slog.Default().With("component", "cmd.gateway")

		mb := bus.NewMessageBus()
		defer mb.Close()

		adapters, err := enabledAdapters(cfg, mb, log)
		if err != nil {
			log.Error("Gateway configuration invalid", "error", err)
			return
		}

		dispatcher, err := dispatch.New(provider.NewServices(cfg), log)
		if err != nil {
			log.Error("Failed to initialize dispatcher", "error", err)
			return
		}

		runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := gateway.NewService(cfg, mb, dispatcher, adapters, log)
		if err != nil {
			log.Error("Failed to initialize gateway service", "error", err)
			return
		}

		events, unsubscribe := mb.SubscribeEvents(runCtx, 0)
		defer unsubscribe()
		go func() {
			for event := range events {
				logEvent(log, event)
			}
		}()

		log.Info("Gateway started",
			"channels", enabledChannelNames(adapters),
			"port", cfg.Gateway.Port,
			"capabilities", cfg.Capabilities(),
		)
		if err := svc.Run(runCtx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Error("Gateway runtime failed", "error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(gatewayCmd)
}

func enabledAdapters(cfg *config.Config, mb *bus.MessageBus, log *slog.Logger) ([]channel.Adapter, error) {
	adapters := make([]channel.Adapter, 0, 2)

	if cfg.Channels.Messenger.Enabled {
		adapter, err := messenger.NewAdapter(cfg.Channels.Messenger, mb, log)
		if err != nil {
			return nil, fmt.Errorf("configure %s channel: %w", messengerChannelName, err)
		}
		adapters = append(adapters, adapter)
	}

	if cfg.Channels.Telegram.Enabled {
		adapter, err := telegram.NewAdapter(cfg.Channels.Telegram, log)
		if err != nil {
			return nil, fmt.Errorf("configure %s channel: %w", telegramChannelName, err)
		}
		adapters = append(adapters, adapter)
	}

	if len(adapters) == 0 {
		return nil, errors.New("no channels are enabled")
	}

	return adapters, nil
}

func enabledChannelNames(adapters []channel.Adapter) string {
	names := make([]string, 0, len(adapters))
	for _, adapter := range adapters {
		names = append(names, adapter.Name())
	}

	return strings.Join(names, ",")
}

func logEvent(log *slog.Logger, event bus.Event) {
	attrs := []any{
		"event", string(event.Type),
		"channel", event.Channel,
		"sender_id", event.SenderID,
		"command", event.Command,
	}

	switch event.Type {
	case bus.EventCommandDispatched:
		log.Info("Command dispatched", append(attrs, "replies", event.Replies)...)
	default:
		log.Debug("Command received", attrs...)
	}
}
