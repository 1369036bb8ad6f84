// Package middleware holds the wrappers applied to commands at registration.
// The last middleware passed to command.ApplyMiddlewares runs first.
package middleware

import (
	"fmt"

	"github.com/keshon/verskeep/internal/command"
	"github.com/keshon/verskeep/internal/version"
)

// WithManager builds the version manager from the loaded configuration and
// hands it to the command.
func WithManager() command.Middleware {
	return func(cmd command.Command) command.Command {
		return &command.WrappedCommand{
			Command: cmd,
			Wrap: func(ctx *command.Context) error {
				rt := ctx.Runtime
				if rt == nil || rt.Config == nil {
					return fmt.Errorf("%s: configuration not loaded", cmd.Name())
				}
				m, err := version.NewManager(rt.Config, &version.Options{
					FS:     rt.FS,
					Logger: rt.Log,
				})
				if err != nil {
					return fmt.Errorf("failed to initialize version manager: %w", err)
				}
				ctx.Manager = m
				return cmd.Run(ctx)
			},
		}
	}
}

// Default is the chain every file command is registered with.
func Default() []command.Middleware {
	return []command.Middleware{WithManager(), WithDebugArgsPrint(), WithOperationID()}
}
