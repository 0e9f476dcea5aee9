package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"
	"time"
)

type Logger interface {
	Info(action, message, requestID string, details map[string]any)
	Debug(action, message, requestID string, details map[string]any)
	Warn(action, message, requestID string, details map[string]any)
	Error(action, message, requestID string, details map[string]any, err error)
}

type jsonLogger struct {
	service  string
	hostname string
	handler  *slog.Logger
}

// New writes JSON lines to stdout at the given level ("debug", "info",
// "warn", "error"; anything else means info).
func New(service, level string) Logger {
	return NewWithWriter(os.Stdout, service, level)
}

func NewWithWriter(w io.Writer, service, level string) Logger {
	hostname, _ := os.Hostname()

	handler := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// timestamp is written explicitly below
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			if len(groups) == 0 && a.Key == slog.MessageKey {
				a.Key = "message"
			}
			return a
		},
	}))

	return &jsonLogger{
		service:  service,
		hostname: hostname,
		handler:  handler,
	}
}

// Nop discards everything.
func Nop() Logger {
	return NewWithWriter(io.Discard, "nop", "error")
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *jsonLogger) Info(action, message, requestID string, details map[string]any) {
	l.log(slog.LevelInfo, action, message, requestID, details, nil)
}

func (l *jsonLogger) Debug(action, message, requestID string, details map[string]any) {
	l.log(slog.LevelDebug, action, message, requestID, details, nil)
}

func (l *jsonLogger) Warn(action, message, requestID string, details map[string]any) {
	l.log(slog.LevelWarn, action, message, requestID, details, nil)
}

func (l *jsonLogger) Error(action, message, requestID string, details map[string]any, err error) {
	l.log(slog.LevelError, action, message, requestID, details, err)
}

func (l *jsonLogger) log(level slog.Level, action, message, requestID string, details map[string]any, err error) {
	ctx := context.Background()
	if !l.handler.Enabled(ctx, level) {
		return
	}

	attrs := []slog.Attr{
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339Nano)),
		slog.String("service", l.service),
		slog.String("hostname", l.hostname),
		slog.String("request_id", requestID),
		slog.String("action", action),
	}
	if len(details) > 0 {
		attrs = append(attrs, slog.Any("details", details))
	}
	if err != nil {
		attrs = append(attrs, slog.Group("error",
			slog.String("msg", err.Error()),
			slog.String("stack", string(debug.Stack())),
		))
	}

	l.handler.LogAttrs(ctx, level, message, attrs...)
}
