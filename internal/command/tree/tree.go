package tree

import (
	"github.com/keshon/verskeep/internal/command"
	"github.com/keshon/verskeep/internal/middleware"
	"github.com/keshon/verskeep/internal/view"
	"github.com/spf13/pflag"
)

type Command struct{}

func (c *Command) Name() string      { return "tree" }
func (c *Command) Aliases() []string { return nil }
func (c *Command) Usage() string     { return "tree <file>..." }
func (c *Command) Brief() string     { return "Show files with their snapshots as a tree" }
func (c *Command) Help() string {
	return `Show each file with its snapshots as children, oldest first. The current
snapshot is marked with "*".

Usage:
  verskeep tree <file>...

Examples:
  verskeep tree notes.txt
  verskeep tree notes.txt todo.md -o yaml`
}

func (c *Command) Subcommands() []command.Command { return nil }
func (c *Command) Flags(fs *pflag.FlagSet)         {}

func (c *Command) Run(ctx *command.Context) error {
	if err := ctx.RequireArgs(1, -1); err != nil {
		return err
	}
	p := ctx.Runtime.Printer

	items := make([]view.Item, 0, len(ctx.Args))
	for _, path := range ctx.Args {
		item, err := view.Build(ctx.Ctx, ctx.Manager, path)
		if err != nil {
			return err
		}
		items = append(items, item)
	}

	if p.Structured() {
		return p.Print(items)
	}
	for _, item := range items {
		if err := view.Render(p.Writer(), item, p.ColorEnabled()); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(&Command{}, middleware.Default()...),
	)
}
