package diff

import (
	"github.com/keshon/verskeep/internal/command"
	"github.com/keshon/verskeep/internal/command/pick"
	"github.com/keshon/verskeep/internal/diff"
	"github.com/keshon/verskeep/internal/middleware"
	"github.com/spf13/pflag"
)

type Command struct{}

func (c *Command) Name() string      { return "diff" }
func (c *Command) Aliases() []string { return nil }
func (c *Command) Usage() string     { return "diff <file> [id]" }
func (c *Command) Brief() string     { return "Compare a snapshot with the live file" }
func (c *Command) Help() string {
	return `Show the differences between a snapshot (left) and the current content of
the file (right). Without an id the current snapshot is used.

The built-in viewer prints a unified diff. Set diff.tool in the config to use
an external tool, e.g. ["code", "--diff", "{left}", "{right}"].

Usage:
  verskeep diff <file> [id]

Examples:
  verskeep diff notes.txt
  verskeep diff notes.txt v1.2`
}

func (c *Command) Subcommands() []command.Command { return nil }
func (c *Command) Flags(fs *pflag.FlagSet)         {}

func (c *Command) Run(ctx *command.Context) error {
	if err := ctx.RequireArgs(1, 2); err != nil {
		return err
	}
	rt := ctx.Runtime
	path, id := ctx.Arg(0), ctx.Arg(1)

	if id == "" {
		cur, ok, err := ctx.Manager.Current(ctx.Ctx, path)
		if err != nil {
			return err
		}
		if ok {
			id = cur.ID
		} else if id, err = pick.Version(ctx, path, "Compare with which version?"); err != nil {
			return err
		}
	}

	v, err := ctx.Manager.GetVersion(ctx.Ctx, path, id)
	if err != nil {
		return err
	}

	viewer := diff.NewViewer(rt.Config.Diff, rt.Out, rt.Err, rt.FS)
	return diff.NewPresenter(ctx.Manager, viewer, rt.Log).ShowDiff(ctx.Ctx, path, v)
}

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(&Command{}, middleware.Default()...),
	)
}
