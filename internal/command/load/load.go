package load

import (
	"fmt"

	"github.com/keshon/verskeep/internal/command"
	"github.com/keshon/verskeep/internal/command/pick"
	"github.com/keshon/verskeep/internal/middleware"
	"github.com/spf13/pflag"
)

type Command struct{}

func (c *Command) Name() string      { return "load" }
func (c *Command) Aliases() []string { return []string{"restore"} }
func (c *Command) Usage() string     { return "load <file> [id]" }
func (c *Command) Brief() string     { return "Restore a file from a snapshot" }
func (c *Command) Help() string {
	return `Overwrite a file with the content of one of its snapshots. The current
snapshot is not changed. Without an id the snapshot is picked interactively.

Usage:
  verskeep load <file> [id]

Examples:
  verskeep load notes.txt v1.2
  verskeep restore notes.txt`
}

func (c *Command) Subcommands() []command.Command { return nil }
func (c *Command) Flags(fs *pflag.FlagSet)         {}

func (c *Command) Run(ctx *command.Context) error {
	if err := ctx.RequireArgs(1, 2); err != nil {
		return err
	}
	path, id := ctx.Arg(0), ctx.Arg(1)

	if id == "" {
		var err error
		id, err = pick.Version(ctx, path, "Restore which version?")
		if err != nil {
			return err
		}
	}

	if err := ctx.Manager.LoadVersion(ctx.Ctx, path, id); err != nil {
		return err
	}
	ctx.Runtime.Printer.Success(fmt.Sprintf("Restored %s to %s", path, id))
	return nil
}

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(&Command{}, middleware.Default()...),
	)
}
