
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger keeps the printf-style helpers used across the service on top of slog.
type Logger struct {
	s *slog.Logger
}

// Options selects verbosity and output format.
type Options struct {
	Level      string
	Structured bool
	Output     io.Writer
}

func New() *Logger { return NewWithOptions(Options{Level: "info"}) }

func NewWithOptions(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}
	var h slog.Handler
	if opts.Structured {
		h = slog.NewJSONHandler(out, hopts)
	} else {
		h = slog.NewTextHandler(out, hopts)
	}
	return &Logger{s: slog.New(h)}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{s: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func parseLevel(level string) slog.Level {
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

// With returns a child logger carrying the given key/value attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{s: l.slog().With(args...)}
}

// Slog exposes the underlying slog.Logger.
func (l *Logger) Slog() *slog.Logger { return l.slog() }

func (l *Logger) slog() *slog.Logger {
	if l == nil || l.s == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l.s
}

func (l *Logger) Debugf(format string, args ...any) {
	l.slog().Debug(fmt.Sprintf(format, args...))
}

func (l *Logger) Infof(format string, args ...any) {
	l.slog().Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...any) {
	l.slog().Warn(fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.slog().Error(fmt.Sprintf(format, args...))
}
