package logger

import (
	"context"

	"github.com/google/uuid"
)

const (
	KeyOperationID = "op_id"
	KeyCommand     = "command"
	KeyFile        = "file"
	KeyVersion     = "version"
)

type contextKey struct{}

var logContextKey = contextKey{}

// LogContext is the per-invocation logging context.
type LogContext struct {
	OperationID string
	Command     string
}

// NewLogContext returns a LogContext with a fresh operation id.
func NewLogContext(command string) *LogContext {
	return &LogContext{OperationID: uuid.NewString(), Command: command}
}

// WithContext returns a new context carrying lc
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext returns the LogContext in ctx, or nil
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// appendContextFields prepends LogContext fields to args
func appendContextFields(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}
	out := make([]any, 0, 4+len(args))
	if lc.OperationID != "" {
		out = append(out, KeyOperationID, lc.OperationID)
	}
	if lc.Command != "" {
		out = append(out, KeyCommand, lc.Command)
	}
	return append(out, args...)
}
