// Package command is the CLI layer: commands implement Command, register in
// init() and are mounted on a cobra root by NewRoot.
package command

import (
	"context"
	"fmt"

	"github.com/keshon/verskeep/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Command represents a cli command
type Command interface {
	Name() string
	Aliases() []string
	Usage() string
	Brief() string
	Help() string
	Subcommands() []Command
	Flags(fs *pflag.FlagSet)
	Run(ctx *Context) error
}

// Context represents a cli context
type Context struct {
	Ctx     context.Context
	Args    []string
	Flags   *pflag.FlagSet
	Cmd     *cobra.Command
	Runtime *Runtime

	// Manager is set by middleware.WithManager.
	Manager *version.Manager
}

// RequireArgs fails unless min <= len(Args) <= max. A negative max means
// no upper bound.
func (c *Context) RequireArgs(min, max int) error {
	n := len(c.Args)
	if n < min || (max >= 0 && n > max) {
		usage := ""
		if c.Cmd != nil {
			usage = c.Cmd.UseLine()
		}
		return fmt.Errorf("wrong number of arguments (%d), usage: %s", n, usage)
	}
	return nil
}

// Arg returns Args[i] or "".
func (c *Context) Arg(i int) string {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return ""
}
