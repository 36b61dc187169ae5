package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"edutune/pkg/config"
)

func TestLoggerJSONEntryShape(t *testing.T) {
	unsetLoggingEnv(t)

	var out bytes.Buffer
	log, err := newWithWriter(config.LoggingConfig{Format: "json", Level: "info"}, &out)
	if err != nil {
		t.Fatalf("newWithWriter error: %v", err)
	}

	log.With("component", "cmd.chat").Info("Command dispatched", "request_id", "42", "ok", true)

	line := strings.TrimSpace(out.String())
	if line == "" {
		t.Fatal("expected log output")
	}

	var entry LogEntry
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("unmarshal log entry: %v", err)
	}

	if entry.Level != "info" {
		t.Fatalf("level = %q, want %q", entry.Level, "info")
	}
	if entry.Message != "Command dispatched" {
		t.Fatalf("message = %q, want %q", entry.Message, "Command dispatched")
	}
	if entry.Component != "cmd.chat" {
		t.Fatalf("component = %q, want %q", entry.Component, "cmd.chat")
	}
	if entry.Timestamp == "" {
		t.Fatal("expected timestamp")
	}
	if got := entry.Fields["request_id"]; got != "42" {
		t.Fatalf("fields.request_id = %v, want %q", got, "42")
	}
	if got := entry.Fields["ok"]; got != true {
		t.Fatalf("fields.ok = %v, want true", got)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	unsetLoggingEnv(t)

	var out bytes.Buffer
	log, err := newWithWriter(config.LoggingConfig{Format: "json", Level: "error"}, &out)
	if err != nil {
		t.Fatalf("newWithWriter error: %v", err)
	}

	log.Info("Ignored")
	if got := strings.TrimSpace(out.String()); got != "" {
		t.Fatalf("expected no output for info, got %q", got)
	}

	log.Error("Kept")
	if got := strings.TrimSpace(out.String()); got == "" {
		t.Fatal("expected output for error")
	}
}

func TestLoggerEnvironmentOverrides(t *testing.T) {
	t.Setenv("EDUTUNE_LOG_LEVEL", "debug")
	t.Setenv("EDUTUNE_LOG_FORMAT", "text")
	defer unsetLoggingEnv(t)

	var out bytes.Buffer
	log, err := newWithWriter(config.LoggingConfig{Format: "json", Level: "error"}, &out)
	if err != nil {
		t.Fatalf("newWithWriter error: %v", err)
	}

	log.Debug("Debug enabled", "component", "test")
	line := strings.TrimSpace(out.String())
	if line == "" {
		t.Fatal("expected debug output with env override")
	}
	if strings.HasPrefix(line, "{") {
		t.Fatalf("expected text format override, got %q", line)
	}
}

func TestLoggerDefaultsToTextFormat(t *testing.T) {
	unsetLoggingEnv(t)

	var out bytes.Buffer
	log, err := newWithWriter(config.LoggingConfig{}, &out)
	if err != nil {
		t.Fatalf("newWithWriter error: %v", err)
	}

	log.Info("Default format")
	line := strings.TrimSpace(out.String())
	if line == "" {
		t.Fatal("expected log output")
	}
	if strings.HasPrefix(line, "{") {
		t.Fatalf("expected text format by default, got %q", line)
	}
}

func TestLoggerPromotesChannelAndCommand(t *testing.T) {
	unsetLoggingEnv(t)

	var out bytes.Buffer
	log, err := newWithWriter(config.LoggingConfig{Format: "json", Level: "info"}, &out)
	if err != nil {
		t.Fatalf("newWithWriter error: %v", err)
	}

	log.Info("Command dispatched", "channel", "messenger", "command", "play", "messages", 1)

	var entry LogEntry
	if err := json.Unmarshal(bytes.TrimSpace(out.Bytes()), &entry); err != nil {
		t.Fatalf("unmarshal log entry: %v", err)
	}
	if entry.Channel != "messenger" {
		t.Fatalf("channel = %q, want %q", entry.Channel, "messenger")
	}
	if entry.Command != "play" {
		t.Fatalf("command = %q, want %q", entry.Command, "play")
	}
	if _, ok := entry.Fields["channel"]; ok {
		t.Fatal("channel should not be duplicated in fields")
	}
}

func TestLoggerRedactsSecrets(t *testing.T) {
	unsetLoggingEnv(t)

	for _, format := range []string{"json", "text"} {
		t.Run(format, func(t *testing.T) {
			var out bytes.Buffer
			log, err := newWithWriter(config.LoggingConfig{Format: format, Level: "info"}, &out)
			if err != nil {
				t.Fatalf("newWithWriter error: %v", err)
			}

			log.With("api_key", "sk-secret").Info("Configured", "access_token", "page-secret")

			got := out.String()
			if strings.Contains(got, "sk-secret") || strings.Contains(got, "page-secret") {
				t.Fatalf("secret leaked into log output: %q", got)
			}
			if !strings.Contains(got, redactedValue) {
				t.Fatalf("expected redaction marker in %q", got)
			}
		})
	}
}

func TestLoggerScrubsTokensInErrors(t *testing.T) {
	unsetLoggingEnv(t)

	for _, format := range []string{"json", "text"} {
		t.Run(format, func(t *testing.T) {
			var out bytes.Buffer
			log, err := newWithWriter(config.LoggingConfig{Format: format, Level: "info"}, &out)
			if err != nil {
				t.Fatalf("newWithWriter error: %v", err)
			}

			sendErr := errors.New(`Post "https://graph.facebook.com/v17.0/me/messages?access_token=EAAB123": dial tcp: timeout`)
			log.Error("Send failed", "error", sendErr, "endpoint", "https://api.giphy.com/v1/gifs/random?api_key=gk-1&tag=funny")

			got := out.String()
			if strings.Contains(got, "EAAB123") || strings.Contains(got, "gk-1") {
				t.Fatalf("token leaked into log output: %q", got)
			}
			if !strings.Contains(got, "tag=funny") {
				t.Fatalf("non-secret query params should survive, got %q", got)
			}
		})
	}
}

func TestLoggerJSONFieldsAndGroups(t *testing.T) {
	unsetLoggingEnv(t)

	var out bytes.Buffer
	log, err := newWithWriter(config.LoggingConfig{Format: "json", Level: "info"}, &out)
	if err != nil {
		t.Fatalf("newWithWriter error: %v", err)
	}

	log.With("sender_id", "42").
		WithGroup("reply").
		With("kind", "image").
		Info("Sending message", "index", 1, "error", errors.New("boom"))

	var entry LogEntry
	if err := json.Unmarshal(bytes.TrimSpace(out.Bytes()), &entry); err != nil {
		t.Fatalf("unmarshal log entry: %v", err)
	}
	if entry.SenderID != "42" {
		t.Fatalf("sender_id = %q, want %q", entry.SenderID, "42")
	}
	if got := entry.Fields["reply.kind"]; got != "image" {
		t.Fatalf("fields[reply.kind] = %v, want %q", got, "image")
	}
	if got := entry.Fields["reply.index"]; got != float64(1) {
		t.Fatalf("fields[reply.index] = %v, want 1", got)
	}
	if got := entry.Fields["reply.error"]; got != "boom" {
		t.Fatalf("fields[reply.error] = %v, want %q", got, "boom")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "", want: slog.LevelInfo},
		{input: "DEBUG", want: slog.LevelDebug},
		{input: "warning", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseLevel(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseLevel(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseLevel(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func unsetLoggingEnv(t *testing.T) {
	t.Helper()
	_ = os.Unsetenv("EDUTUNE_LOG_LEVEL")
	_ = os.Unsetenv("EDUTUNE_LOG_FORMAT")
	_ = os.Unsetenv("EDUTUNE_LOG_ADD_SOURCE")
}
