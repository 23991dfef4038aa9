// Package logger holds the process-wide slog logger and carries
// request-scoped children through a context.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

type ctxKey struct{}

var (
	level   = new(slog.LevelVar)
	current atomic.Pointer[slog.Logger]
)

// Init installs a stdout logger at the given level, as JSON or text.
func Init(lvl string, json bool) {
	InitWriter(os.Stdout, lvl, json)
}

// InitWriter is Init with a custom destination.
func InitWriter(w io.Writer, lvl string, json bool) {
	level.Set(ParseLevel(lvl))
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler = slog.NewTextHandler(w, opts)
	if json {
		h = slog.NewJSONHandler(w, opts)
	}
	l := slog.New(h)
	current.Store(l)
	slog.SetDefault(l)
}

// ParseLevel accepts debug, info, warn or error in any case; anything else is info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

func Get() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	Init("info", false)
	return current.Load()
}

// IntoContext attaches l to ctx for WithContext to find.
func IntoContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// WithContext returns the logger attached to ctx, falling back to the global one.
func WithContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return Get()
}

func With(args ...any) *slog.Logger { return Get().With(args...) }

func Debug(msg string, args ...any) { Get().Debug(msg, args...) }
func Info(msg string, args ...any)  { Get().Info(msg, args...) }
func Warn(msg string, args ...any)  { Get().Warn(msg, args...) }
func Error(msg string, args ...any) { Get().Error(msg, args...) }

// Fatal logs at error level and exits with status 1.
func Fatal(msg string, args ...any) {
	Get().Error(msg, args...)
	os.Exit(1)
}
