package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	envPageAccessToken     = "PAGE_ACCESS_TOKEN"
	envVerifyToken         = "VERIFY_TOKEN"
	envAppSecret           = "APP_SECRET"
	envPageID              = "PAGE_ID"
	envOpenAIAPIKey        = "OPENAI_API_KEY"
	envGiphyAPIKey         = "GIPHY_API_KEY"
	envSpotifyClientID     = "SPOTIFY_CLIENT_ID"
	envSpotifyClientSecret = "SPOTIFY_CLIENT_SECRET"
	envYouTubeAPIKey       = "YT_API_KEY"
	envPort                = "PORT"
	envTelegramBotToken    = "TELEGRAM_BOT_TOKEN"
	envTelegramAllowFrom   = "TELEGRAM_ALLOW_FROM"
)

const (
	DefaultVerifyToken     = "mybot123"
	DefaultPort            = 3000
	DefaultWebhookPath     = "/webhook"
	DefaultGraphAPIVersion = "v17.0"
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultOpenAIMaxTokens = 400
	DefaultRequestTimeout  = 10
)

// Config is the root runtime configuration. It is built once at startup and
// treated as read-only afterwards.
type Config struct {
	Channels ChannelsConfig `json:"channels"`
	Services ServicesConfig `json:"services"`
	Gateway  GatewayConfig  `json:"gateway"`
	Logging  LoggingConfig  `json:"logging,omitempty"`
}

// LoggingConfig controls structured log output format and verbosity.
type LoggingConfig struct {
	Format    string `json:"format,omitempty"`
	Level     string `json:"level,omitempty"`
	AddSource bool   `json:"add_source,omitempty"`
}

// ChannelsConfig stores transport adapter settings.
type ChannelsConfig struct {
	Messenger MessengerConfig `json:"messenger"`
	Telegram  TelegramConfig  `json:"telegram"`
}

// MessengerConfig configures the Facebook Messenger webhook channel.
type MessengerConfig struct {
	Enabled         bool   `json:"enabled"`
	PageAccessToken string `json:"page_access_token"`
	VerifyToken     string `json:"verify_token"`
	AppSecret       string `json:"app_secret"`
	PageID          string `json:"page_id"`
	GraphBaseURL    string `json:"graph_base_url"`
	GraphAPIVersion string `json:"graph_api_version"`
	WebhookPath     string `json:"webhook_path"`
}

// TelegramConfig configures Telegram channel integration.
type TelegramConfig struct {
	Enabled   bool     `json:"enabled"`
	Token     string   `json:"token"`
	AllowFrom []string `json:"allow_from"`
}

// ServicesConfig groups the external content APIs used to fulfil commands.
type ServicesConfig struct {
	RequestTimeoutSeconds int            `json:"request_timeout_seconds"`
	OpenAI                OpenAIConfig   `json:"openai"`
	Giphy                 GiphyConfig    `json:"giphy"`
	JokeAPI               EndpointConfig `json:"jokeapi"`
	Quotable              EndpointConfig `json:"quotable"`
	Spotify               SpotifyConfig  `json:"spotify"`
	YouTube               YouTubeConfig  `json:"youtube"`
}

// OpenAIConfig configures the answer generator.
type OpenAIConfig struct {
	APIKey       string `json:"api_key"`
	BaseURL      string `json:"base_url"`
	Model        string `json:"model"`
	MaxTokens    int64  `json:"max_tokens"`
	SystemPrompt string `json:"system_prompt"`
}

// GiphyConfig configures the meme source.
type GiphyConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	Tag     string `json:"tag"`
	Rating  string `json:"rating"`
}

// EndpointConfig overrides the base URL of a keyless content API.
type EndpointConfig struct {
	BaseURL string `json:"base_url"`
}

// SpotifyConfig configures client-credentials access to the Spotify Web API.
type SpotifyConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	TokenURL     string `json:"token_url"`
	APIBaseURL   string `json:"api_base_url"`
}

// YouTubeConfig configures search-link generation.
type YouTubeConfig struct {
	APIKey string `json:"api_key"`
}

// GatewayConfig configures HTTP bind settings.
type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Channels: ChannelsConfig{
			Messenger: MessengerConfig{Enabled: true},
		},
	}
}

// LoadConfig resolves the optional config file, loads .env files, and applies
// environment overrides and defaults.
func LoadConfig() (*Config, error) {
	cfg := Default()

	configPath, err := findConfigPath()
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		cfg = &Config{}
		if err := json.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	loadEnvFiles()
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	return cfg, nil
}

// loadEnvFiles loads .env files from the working directory without
// overwriting variables already present in the process environment.
func loadEnvFiles() {
	for _, name := range []string{".env", ".env.local"} {
		_ = godotenv.Load(name)
	}
}

// applyEnvOverrides injects env-driven credentials on top of file config.
func applyEnvOverrides(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	messenger := &cfg.Channels.Messenger
	if token := envValue(envPageAccessToken); token != "" {
		messenger.PageAccessToken = token
		messenger.Enabled = true
	}
	overrideString(&messenger.VerifyToken, envVerifyToken)
	overrideString(&messenger.AppSecret, envAppSecret)
	overrideString(&messenger.PageID, envPageID)

	services := &cfg.Services
	overrideString(&services.OpenAI.APIKey, envOpenAIAPIKey)
	overrideString(&services.Giphy.APIKey, envGiphyAPIKey)
	overrideString(&services.Spotify.ClientID, envSpotifyClientID)
	overrideString(&services.Spotify.ClientSecret, envSpotifyClientSecret)
	overrideString(&services.YouTube.APIKey, envYouTubeAPIKey)

	if rawPort := envValue(envPort); rawPort != "" {
		port, err := strconv.Atoi(rawPort)
		if err != nil || port <= 0 {
			return fmt.Errorf("%s must be a positive integer, got %q", envPort, rawPort)
		}
		cfg.Gateway.Port = port
	}

	if token := envValue(envTelegramBotToken); token != "" {
		cfg.Channels.Telegram.Token = token
	}
	if rawAllowFrom := envValue(envTelegramAllowFrom); rawAllowFrom != "" {
		cfg.Channels.Telegram.AllowFrom = parseCSV(rawAllowFrom)
	}

	return nil
}

func applyDefaults(cfg *Config) {
	messenger := &cfg.Channels.Messenger
	if strings.TrimSpace(messenger.VerifyToken) == "" {
		messenger.VerifyToken = DefaultVerifyToken
	}
	if strings.TrimSpace(messenger.GraphAPIVersion) == "" {
		messenger.GraphAPIVersion = DefaultGraphAPIVersion
	}
	if strings.TrimSpace(messenger.WebhookPath) == "" {
		messenger.WebhookPath = DefaultWebhookPath
	}

	services := &cfg.Services
	if services.RequestTimeoutSeconds <= 0 {
		services.RequestTimeoutSeconds = DefaultRequestTimeout
	}
	if strings.TrimSpace(services.OpenAI.Model) == "" {
		services.OpenAI.Model = DefaultOpenAIModel
	}
	if services.OpenAI.MaxTokens <= 0 || services.OpenAI.MaxTokens > DefaultOpenAIMaxTokens {
		services.OpenAI.MaxTokens = DefaultOpenAIMaxTokens
	}

	if cfg.Gateway.Port <= 0 {
		cfg.Gateway.Port = DefaultPort
	}
}

// Capabilities reports which credential-gated commands are configured.
func (c *Config) Capabilities() map[string]bool {
	spotify := c.Services.Spotify
	return map[string]bool{
		"openai":    strings.TrimSpace(c.Services.OpenAI.APIKey) != "",
		"giphy":     strings.TrimSpace(c.Services.Giphy.APIKey) != "",
		"spotify":   strings.TrimSpace(spotify.ClientID) != "" && strings.TrimSpace(spotify.ClientSecret) != "",
		"messenger": strings.TrimSpace(c.Channels.Messenger.PageAccessToken) != "",
	}
}

func overrideString(target *string, key string) {
	if value := envValue(key); value != "" {
		*target = value
	}
}

func envValue(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// parseCSV splits comma-separated values and returns a trimmed compact slice.
func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	clean := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		clean = append(clean, trimmed)
	}

	return slices.Clip(clean)
}

// findConfigPath resolves the active config file location.
//
// Precedence is EDUTUNE_CONFIG first, then cwd-local fallback paths. An empty
// path with a nil error means no file is present and defaults apply.
func findConfigPath() (string, error) {
	if value := strings.TrimSpace(os.Getenv("EDUTUNE_CONFIG")); value != "" {
		if info, err := os.Stat(value); err == nil && !info.IsDir() {
			return value, nil
		}
		return "", fmt.Errorf("EDUTUNE_CONFIG does not point to a file: %s", value)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current working directory: %w", err)
	}

	candidates := []string{
		filepath.Join(cwd, "config.json"),
		filepath.Join(cwd, "config", "config.json"),
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
	}

	return "", nil
}
