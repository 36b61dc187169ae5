package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"edutune/pkg/bus"
	"edutune/pkg/channel"
	"edutune/pkg/command"
	"edutune/pkg/config"
	"edutune/pkg/dispatch"
)

const (
	defaultHost       = "0.0.0.0"
	eventBufferSize   = 256
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Service runs the HTTP surface and every channel adapter, routing each
// inbound message through classification and dispatch.
type Service struct {
	cfg        *config.Config
	log        *slog.Logger
	bus        *bus.MessageBus
	dispatcher *dispatch.Dispatcher
	channels   []channel.Adapter

	mu            sync.RWMutex
	startedAt     time.Time
	channelStates map[string]channelState
	commandCounts map[string]int64
	lastCommandAt time.Time
}

type channelState struct {
	Running bool   `json:"running"`
	Error   string `json:"error,omitempty"`
}

type statusResponse struct {
	Status        string                  `json:"status"`
	UptimeSeconds int64                   `json:"uptime_seconds"`
	Channels      map[string]channelState `json:"channels"`
	Capabilities  map[string]bool         `json:"capabilities"`
	Commands      map[string]int64        `json:"commands"`
	LastCommandAt string                  `json:"last_command_at,omitempty"`
}

func NewService(cfg *config.Config, mb *bus.MessageBus, dispatcher *dispatch.Dispatcher, adapters []channel.Adapter, log *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if mb == nil {
		return nil, errors.New("message bus is required")
	}
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if len(adapters) == 0 {
		return nil, errors.New("at least one channel adapter is required")
	}
	if log == nil {
		log = slog.Default()
	}

	channelStates := make(map[string]channelState, len(adapters))
	for _, adapter := range adapters {
		channelStates[adapter.Name()] = channelState{}
	}

	return &Service{
		cfg:           cfg,
		log:           log.With("component", "gateway.service"),
		bus:           mb,
		dispatcher:    dispatcher,
		channels:      adapters,
		channelStates: channelStates,
		commandCounts: make(map[string]int64),
	}, nil
}

func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	s.startedAt = time.Now().UTC()
	s.mu.Unlock()

	events, unsubscribe := s.bus.SubscribeEvents(ctx, eventBufferSize)
	defer unsubscribe()
	go s.trackEvents(events)

	serverErrors := make(chan error, 1)
	go s.runHTTPServer(ctx, serverErrors)

	errCh := make(chan error, len(s.channels))
	for _, adapter := range s.channels {
		s.setChannelState(adapter.Name(), channelState{Running: true})

		go func() {
			err := adapter.Run(ctx, s.handleInbound)
			s.setChannelState(adapter.Name(), channelState{Running: false, Error: errorString(err)})
			if err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("run %s channel: %w", adapter.Name(), err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-serverErrors:
		return err
	case err := <-errCh:
		return err
	}
}

// handleInbound classifies one message and returns its reply sequence.
func (s *Service) handleInbound(ctx context.Context, inbound bus.InboundMessage) []bus.OutboundMessage {
	cmd := command.Classify(inbound.Content)
	kind := string(cmd.Kind())

	s.bus.PublishEvent(ctx, bus.Event{
		Type:     bus.EventCommandReceived,
		Channel:  inbound.Channel,
		SenderID: inbound.SenderID,
		Command:  kind,
	})

	startedAt := time.Now()
	replies := s.dispatcher.Dispatch(ctx, inbound.SenderID, cmd)
	s.log.Debug("Command dispatched",
		"channel", inbound.Channel,
		"sender_id", inbound.SenderID,
		"command", kind,
		"replies", len(replies),
		"duration_ms", time.Since(startedAt).Milliseconds(),
	)

	s.bus.PublishEvent(ctx, bus.Event{
		Type:     bus.EventCommandDispatched,
		Channel:  inbound.Channel,
		SenderID: inbound.SenderID,
		Command:  kind,
		Replies:  len(replies),
	})

	return replies
}

func (s *Service) trackEvents(events <-chan bus.Event) {
	for event := range events {
		if event.Type != bus.EventCommandDispatched {
			continue
		}

		s.mu.Lock()
		s.commandCounts[event.Command]++
		s.lastCommandAt = event.At
		s.mu.Unlock()
	}
}

// Router builds the HTTP handler: status endpoints plus every webhook
// adapter's routes.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	for _, adapter := range s.channels {
		if webhook, ok := adapter.(channel.WebhookAdapter); ok {
			webhook.Routes(r)
		}
	}

	return r
}

func (s *Service) runHTTPServer(ctx context.Context, errCh chan<- error) {
	host := strings.TrimSpace(s.cfg.Gateway.Host)
	if host == "" {
		host = defaultHost
	}

	port := s.cfg.Gateway.Port
	if port <= 0 {
		port = config.DefaultPort
	}

	addr := host + ":" + strconv.Itoa(port)
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.log.Info("Gateway HTTP server started", "address", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errCh <- fmt.Errorf("start http server: %w", err)
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondStatus(w, http.StatusOK, "ok")
}

func (s *Service) handleReady(w http.ResponseWriter, _ *http.Request) {
	statusCode := http.StatusOK
	status := "ready"
	if !s.isReady() {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	s.respondStatus(w, statusCode, status)
}

func (s *Service) respondStatus(w http.ResponseWriter, statusCode int, status string) {
	payload := s.currentStatus(status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("Failed to write status response", "error", err)
	}
}

func (s *Service) currentStatus(status string) statusResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uptime := int64(0)
	if !s.startedAt.IsZero() {
		uptime = int64(time.Since(s.startedAt).Seconds())
	}

	channels := make(map[string]channelState, len(s.channelStates))
	for name, state := range s.channelStates {
		channels[name] = state
	}

	commands := make(map[string]int64, len(s.commandCounts))
	for name, count := range s.commandCounts {
		commands[name] = count
	}

	lastCommandAt := ""
	if !s.lastCommandAt.IsZero() {
		lastCommandAt = s.lastCommandAt.Format(time.RFC3339)
	}

	return statusResponse{
		Status:        status,
		UptimeSeconds: uptime,
		Channels:      channels,
		Capabilities:  s.cfg.Capabilities(),
		Commands:      commands,
		LastCommandAt: lastCommandAt,
	}
}

// isReady reports whether at least one channel adapter is running.
func (s *Service) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, state := range s.channelStates {
		if state.Running {
			return true
		}
	}

	return false
}

func (s *Service) setChannelState(name string, state channelState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channelStates[name] = state
}

func errorString(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}
