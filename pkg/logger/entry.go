package logger

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// LogEntry is one line of JSON log output.
type LogEntry struct {
	Level     string         `json:"level"`
	Timestamp string         `json:"timestamp"`
	Component string         `json:"component,omitempty"`
	Channel   string         `json:"channel,omitempty"`
	Command   string         `json:"command,omitempty"`
	SenderID  string         `json:"sender_id,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
	Caller    string         `json:"caller,omitempty"`
}

// promoted lifts top-level string attributes out of fields.
var promoted = map[string]func(*LogEntry, string){
	"component": func(e *LogEntry, v string) { e.Component = v },
	"channel":   func(e *LogEntry, v string) { e.Channel = v },
	"command":   func(e *LogEntry, v string) { e.Command = v },
	"sender_id": func(e *LogEntry, v string) { e.SenderID = v },
}

type entryHandler struct {
	opts   options
	writer io.Writer
	mu     *sync.Mutex

	// attrs carry keys already qualified by the groups open when they were added.
	attrs  []slog.Attr
	prefix string
}

func newEntryHandler(writer io.Writer, opts options) *entryHandler {
	return &entryHandler{opts: opts, writer: writer, mu: &sync.Mutex{}}
}

func (h *entryHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level
}

func (h *entryHandler) Handle(_ context.Context, record slog.Record) error {
	at := record.Time
	if at.IsZero() {
		at = time.Now()
	}

	entry := LogEntry{
		Level:     strings.ToLower(record.Level.String()),
		Timestamp: at.UTC().Format(time.RFC3339Nano),
		Message:   record.Message,
	}

	fields := make(map[string]any, len(h.attrs)+record.NumAttrs())
	for _, attr := range h.attrs {
		collect(&entry, fields, attr.Key, attr.Value)
	}
	record.Attrs(func(attr slog.Attr) bool {
		collect(&entry, fields, h.prefix+attr.Key, attr.Value)
		return true
	})
	if len(fields) > 0 {
		entry.Fields = fields
	}
	if h.opts.addSource {
		entry.Caller = caller(record.PC)
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.writer.Write(append(line, '\n'))
	return err
}

func (h *entryHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, attr := range attrs {
		next.attrs = append(next.attrs, slog.Attr{Key: h.prefix + attr.Key, Value: attr.Value})
	}
	return &next
}

func (h *entryHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func collect(entry *LogEntry, fields map[string]any, key string, value slog.Value) {
	if key == "" {
		return
	}

	value = value.Resolve()
	if set, ok := promoted[key]; ok && value.Kind() == slog.KindString {
		set(entry, value.String())
		return
	}

	fields[key] = jsonValue(value)
}

func jsonValue(value slog.Value) any {
	switch value.Kind() {
	case slog.KindDuration:
		return value.Duration().String()
	case slog.KindTime:
		return value.Time().UTC().Format(time.RFC3339Nano)
	case slog.KindGroup:
		group := make(map[string]any, len(value.Group()))
		for _, attr := range value.Group() {
			group[attr.Key] = jsonValue(attr.Value.Resolve())
		}
		return group
	case slog.KindAny:
		if err, ok := value.Any().(error); ok {
			return err.Error()
		}
		return value.Any()
	default:
		return value.Any()
	}
}

func caller(pc uintptr) string {
	if pc == 0 {
		return ""
	}

	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if frame.File == "" {
		return ""
	}

	return filepath.Base(frame.File) + ":" + strconv.Itoa(frame.Line)
}
