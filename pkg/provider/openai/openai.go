package openai

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	osdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"edutune/pkg/config"
	providertypes "edutune/pkg/provider/types"
)

const (
	serviceName         = "openai"
	defaultSystemPrompt = "You are a helpful educational assistant. Answer clearly and simply."
)

// Client answers free-form questions with a single chat completion.
type Client struct {
	client         osdk.Client
	configured     bool
	model          string
	maxTokens      int64
	systemPrompt   string
	requestTimeout time.Duration
}

func New(cfg config.OpenAIConfig, timeout time.Duration) *Client {
	apiKey := strings.TrimSpace(cfg.APIKey)

	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = config.DefaultOpenAIModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 || maxTokens > config.DefaultOpenAIMaxTokens {
		maxTokens = config.DefaultOpenAIMaxTokens
	}
	systemPrompt := strings.TrimSpace(cfg.SystemPrompt)
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	return &Client{
		client:         osdk.NewClient(opts...),
		configured:     apiKey != "",
		model:          model,
		maxTokens:      maxTokens,
		systemPrompt:   systemPrompt,
		requestTimeout: timeout,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.configured
}

// Answer returns the model's reply to question.
func (c *Client) Answer(ctx context.Context, question string) (string, error) {
	if !c.configured {
		return "", providertypes.Unconfigured(serviceName)
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return "", providertypes.NoResult(serviceName)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	log := providerLogger().With("operation", "answer")
	startedAt := time.Now()
	log.Debug("provider request started", "model", c.model, "question_length", len(question))

	completion, err := c.client.Chat.Completions.New(ctx, osdk.ChatCompletionNewParams{
		Model: osdk.ChatModel(c.model),
		Messages: []osdk.ChatCompletionMessageParamUnion{
			osdk.SystemMessage(c.systemPrompt),
			osdk.UserMessage(question),
		},
		MaxTokens: osdk.Int(c.maxTokens),
	})
	if err != nil {
		log.Debug("provider request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "error", err)
		var apiErr *osdk.Error
		if errors.As(err, &apiErr) {
			err = apiError{err: apiErr}
		}
		return "", providertypes.RemoteFailure(serviceName, err)
	}
	if completion == nil || len(completion.Choices) == 0 {
		log.Debug("provider request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "error", "no choices")
		return "", providertypes.NoResult(serviceName)
	}

	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		log.Debug("provider request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "error", "empty content")
		return "", providertypes.NoResult(serviceName)
	}
	log.Debug("provider request completed", "duration_ms", time.Since(startedAt).Milliseconds(), "response_length", len(text))

	return text, nil
}

// apiError exposes the status code of an OpenAI API error.
type apiError struct {
	err *osdk.Error
}

func (e apiError) Error() string   { return e.err.Error() }
func (e apiError) Unwrap() error   { return e.err }
func (e apiError) HTTPStatus() int { return e.err.StatusCode }

func providerLogger() *slog.Logger {
	return slog.Default().With("component", "provider.openai")
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.requestTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, c.requestTimeout)
}
