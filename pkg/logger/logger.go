// Package logger builds the process-wide slog logger: a charm text handler
// for terminals or one JSON entry per line for log shippers. Both formats mask
// credentials before anything is written.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	charmLog "github.com/charmbracelet/log"

	"edutune/pkg/config"
)

const (
	formatText = "text"
	formatJSON = "json"

	envLevel     = "EDUTUNE_LOG_LEVEL"
	envFormat    = "EDUTUNE_LOG_FORMAT"
	envAddSource = "EDUTUNE_LOG_ADD_SOURCE"
)

// options is the logging configuration after environment overrides.
type options struct {
	format    string
	level     slog.Level
	addSource bool
}

func New(cfg config.LoggingConfig) (*slog.Logger, error) {
	return newWithWriter(cfg, os.Stderr)
}

func newWithWriter(cfg config.LoggingConfig, writer io.Writer) (*slog.Logger, error) {
	opts, err := resolveOptions(cfg)
	if err != nil {
		return nil, err
	}

	var handler slog.Handler
	switch opts.format {
	case formatJSON:
		handler = newEntryHandler(writer, opts)
	default:
		handler = charmLog.NewWithOptions(writer, charmLog.Options{
			Level:           charmLog.Level(opts.level),
			ReportTimestamp: true,
			ReportCaller:    opts.addSource,
			Formatter:       charmLog.TextFormatter,
		})
	}

	return slog.New(redactHandler{next: handler}), nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func resolveOptions(cfg config.LoggingConfig) (options, error) {
	format := strings.ToLower(envOr(envFormat, cfg.Format))
	if format == "" {
		format = formatText
	}
	if format != formatText && format != formatJSON {
		return options{}, fmt.Errorf("unsupported log format %q", format)
	}

	level, err := parseLevel(envOr(envLevel, cfg.Level))
	if err != nil {
		return options{}, err
	}

	addSource := cfg.AddSource
	if raw := strings.TrimSpace(os.Getenv(envAddSource)); raw != "" {
		addSource = parseBool(raw)
	}

	return options{format: format, level: level, addSource: addSource}, nil
}

// envOr prefers a non-empty environment value over the configured one.
func envOr(key, configured string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}

	return strings.TrimSpace(configured)
}

func parseLevel(input string) (slog.Level, error) {
	text := strings.ToLower(input)
	switch text {
	case "":
		return slog.LevelInfo, nil
	case "warning":
		text = "warn"
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(text)); err != nil {
		return 0, fmt.Errorf("unsupported log level %q", input)
	}

	return level, nil
}

func parseBool(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
