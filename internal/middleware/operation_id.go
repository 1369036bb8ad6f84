package middleware

import (
	"context"

	"github.com/keshon/verskeep/internal/command"
	"github.com/keshon/verskeep/internal/logger"
)

// WithOperationID tags the command context with a fresh operation id so
// every log line of one invocation can be correlated.
func WithOperationID() command.Middleware {
	return func(cmd command.Command) command.Command {
		return &command.WrappedCommand{
			Command: cmd,
			Wrap: func(ctx *command.Context) error {
				parent := ctx.Ctx
				if parent == nil {
					parent = context.Background()
				}
				ctx.Ctx = logger.WithContext(parent, logger.NewLogContext(cmd.Name()))
				return cmd.Run(ctx)
			},
		}
	}
}
