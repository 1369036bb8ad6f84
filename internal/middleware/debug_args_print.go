package middleware

import (
	"github.com/keshon/verskeep/internal/command"
)

// WithDebugArgsPrint logs the command arguments at debug level.
func WithDebugArgsPrint() command.Middleware {
	return func(cmd command.Command) command.Command {
		return &command.WrappedCommand{
			Command: cmd,
			Wrap: func(ctx *command.Context) error {
				if rt := ctx.Runtime; rt != nil && rt.Log != nil {
					rt.Log.DebugCtx(ctx.Ctx, "command args", "command", cmd.Name(), "args", ctx.Args)
				}
				return cmd.Run(ctx)
			},
		}
	}
}
