// Package logger wraps log/slog with the level/format/output configuration
// used across verskeep. Loggers are built explicitly and passed down; there
// is no package-level instance.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds logger configuration
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or file path
}

// Logger is a slog.Logger that knows how to pull the operation id out of a
// context and how to release its output.
type Logger struct {
	sl     *slog.Logger
	closer io.Closer
}

// New builds a Logger from cfg. A file output is opened for append and
// closed by Close.
func New(cfg Config) (*Logger, error) {
	var (
		out    io.Writer
		closer io.Closer
	)
	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
		}
		out, closer = f, f
	}

	l := NewWithWriter(out, cfg.Level, cfg.Format)
	l.closer = closer
	return l, nil
}

// NewWithWriter builds a Logger writing to w. Useful for tests.
func NewWithWriter(w io.Writer, level, format string) *Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return &Logger{sl: slog.New(h)}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return NewWithWriter(io.Discard, "ERROR", "text")
}

// ParseLevel maps a level name to slog. Unknown names give INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Close releases a file output. Safe to call on stream outputs.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}

// With returns a Logger with additional attributes sharing the same output.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{sl: l.sl.With(args...), closer: l.closer}
}

// Slog exposes the underlying slog.Logger.
func (l *Logger) Slog() *slog.Logger { return l.sl }

func (l *Logger) Debug(msg string, args ...any) { l.sl.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.sl.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.sl.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.sl.Error(msg, args...) }

// DebugCtx logs at debug level with the operation id from ctx
func (l *Logger) DebugCtx(ctx context.Context, msg string, args ...any) {
	l.sl.DebugContext(ctx, msg, appendContextFields(ctx, args)...)
}

// InfoCtx logs at info level with the operation id from ctx
func (l *Logger) InfoCtx(ctx context.Context, msg string, args ...any) {
	l.sl.InfoContext(ctx, msg, appendContextFields(ctx, args)...)
}

// WarnCtx logs at warn level with the operation id from ctx
func (l *Logger) WarnCtx(ctx context.Context, msg string, args ...any) {
	l.sl.WarnContext(ctx, msg, appendContextFields(ctx, args)...)
}

// ErrorCtx logs at error level with the operation id from ctx
func (l *Logger) ErrorCtx(ctx context.Context, msg string, args ...any) {
	l.sl.ErrorContext(ctx, msg, appendContextFields(ctx, args)...)
}
