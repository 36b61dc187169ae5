package logger

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

const redactedValue = "[redacted]"

// secretKeys lists attribute keys whose values never reach log output.
var secretKeys = map[string]struct{}{
	"access_token":      {},
	"page_access_token": {},
	"api_key":           {},
	"client_secret":     {},
	"app_secret":        {},
	"verify_token":      {},
	"authorization":     {},
}

// secretParam matches credentials embedded in request URLs, which transport
// errors quote verbatim.
var secretParam = regexp.MustCompile(`(?i)\b(access_token|api_key|client_secret)=[^&\s"']+`)

// redactHandler masks secrets before delegating to the output handler.
type redactHandler struct {
	next slog.Handler
}

func (h redactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h redactHandler) Handle(ctx context.Context, record slog.Record) error {
	clean := slog.NewRecord(record.Time, record.Level, scrub(record.Message), record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		clean.AddAttrs(redact(attr))
		return true
	})

	return h.next.Handle(ctx, clean)
}

func (h redactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		clean = append(clean, redact(attr))
	}

	return redactHandler{next: h.next.WithAttrs(clean)}
}

func (h redactHandler) WithGroup(name string) slog.Handler {
	return redactHandler{next: h.next.WithGroup(name)}
}

func redact(attr slog.Attr) slog.Attr {
	if isSecretKey(attr.Key) {
		return slog.String(attr.Key, redactedValue)
	}

	value := attr.Value.Resolve()
	switch value.Kind() {
	case slog.KindString:
		return slog.String(attr.Key, scrub(value.String()))
	case slog.KindGroup:
		members := value.Group()
		clean := make([]slog.Attr, len(members))
		for i, member := range members {
			clean[i] = redact(member)
		}
		return slog.Attr{Key: attr.Key, Value: slog.GroupValue(clean...)}
	case slog.KindAny:
		if err, ok := value.Any().(error); ok {
			if text := scrub(err.Error()); text != err.Error() {
				return slog.String(attr.Key, text)
			}
		}
	}

	return slog.Attr{Key: attr.Key, Value: value}
}

func scrub(text string) string {
	return secretParam.ReplaceAllString(text, "${1}="+redactedValue)
}

func isSecretKey(key string) bool {
	_, ok := secretKeys[strings.ToLower(strings.TrimSpace(key))]
	return ok
}
