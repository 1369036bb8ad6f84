package compare

import (
	"github.com/keshon/verskeep/internal/command"
	"github.com/keshon/verskeep/internal/diff"
	"github.com/keshon/verskeep/internal/middleware"
	"github.com/spf13/pflag"
)

type Command struct{}

func (c *Command) Name() string      { return "compare" }
func (c *Command) Aliases() []string { return []string{"cmp"} }
func (c *Command) Usage() string     { return "compare <file> <a> <b>" }
func (c *Command) Brief() string     { return "Compare two snapshots of a file" }
func (c *Command) Help() string {
	return `Show the differences between snapshot a (left) and snapshot b (right).

Usage:
  verskeep compare <file> <a> <b>

Examples:
  verskeep compare notes.txt v1.0 v1.3`
}

func (c *Command) Subcommands() []command.Command { return nil }
func (c *Command) Flags(fs *pflag.FlagSet)         {}

func (c *Command) Run(ctx *command.Context) error {
	if err := ctx.RequireArgs(3, 3); err != nil {
		return err
	}
	rt := ctx.Runtime

	viewer := diff.NewViewer(rt.Config.Diff, rt.Out, rt.Err, rt.FS)
	return diff.NewPresenter(ctx.Manager, viewer, rt.Log).
		CompareTwoVersions(ctx.Ctx, ctx.Arg(0), ctx.Arg(1), ctx.Arg(2))
}

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(&Command{}, middleware.Default()...),
	)
}
