package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(New(os.Stdout, "info", "json"))
}

// New builds a logger writing to w. Format "text" gives human-readable lines,
// anything else JSON. Level is one of debug, info, warn, error.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var h slog.Handler
	if strings.EqualFold(format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h)
}

// Setup replaces the process logger.
func Setup(w io.Writer, level, format string) *slog.Logger {
	l := New(w, level, format)
	logger.Store(l)
	slog.SetDefault(l)
	return l
}

// Logger returns the process logger.
func Logger() *slog.Logger { return logger.Load() }

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Log(level slog.Level, msg string, fields map[string]any) {
	l := logger.Load()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, fields[k]))
	}
	l.Log(context.Background(), level, msg, attrs...)
}

func Debug(msg string, fields map[string]any) { Log(slog.LevelDebug, msg, fields) }
func Info(msg string, fields map[string]any)  { Log(slog.LevelInfo, msg, fields) }
func Warn(msg string, fields map[string]any)  { Log(slog.LevelWarn, msg, fields) }
func Error(msg string, fields map[string]any) { Log(slog.LevelError, msg, fields) }
