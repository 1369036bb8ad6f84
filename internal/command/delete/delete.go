package delete

import (
	"fmt"

	"github.com/keshon/verskeep/internal/cli/prompt"
	"github.com/keshon/verskeep/internal/command"
	"github.com/keshon/verskeep/internal/command/pick"
	"github.com/keshon/verskeep/internal/middleware"
	"github.com/spf13/pflag"
)

type Command struct{}

func (c *Command) Name() string      { return "delete" }
func (c *Command) Aliases() []string { return []string{"rm"} }
func (c *Command) Usage() string     { return "delete <file> [id] [options]" }
func (c *Command) Brief() string     { return "Delete a snapshot of a file" }
func (c *Command) Help() string {
	return `Delete one snapshot of a file. When the deleted snapshot was current, the
newest remaining snapshot becomes current. Without an id the snapshot is
picked interactively.

Options:
  -f, --force  Do not ask for confirmation.

Usage:
  verskeep delete <file> [id] [options]

Examples:
  verskeep delete notes.txt v1.0
  verskeep rm notes.txt v1.3 --force`
}

func (c *Command) Subcommands() []command.Command { return nil }

func (c *Command) Flags(fs *pflag.FlagSet) {
	fs.BoolP("force", "f", false, "do not ask for confirmation")
}

func (c *Command) Run(ctx *command.Context) error {
	if err := ctx.RequireArgs(1, 2); err != nil {
		return err
	}
	rt := ctx.Runtime
	path, id := ctx.Arg(0), ctx.Arg(1)
	force, _ := ctx.Flags.GetBool("force")

	if id == "" {
		var err error
		id, err = pick.Version(ctx, path, "Delete which version?")
		if err != nil {
			return err
		}
	}

	// Fail on an unknown id before asking anything.
	if _, err := ctx.Manager.GetVersion(ctx.Ctx, path, id); err != nil {
		return err
	}

	if !force && !rt.Interactive {
		return fmt.Errorf("refusing to delete %s of %s without confirmation, use --force", id, path)
	}
	ok, err := prompt.ConfirmWithForce(rt.Prompter, fmt.Sprintf("Delete version %s of %s", id, path), force)
	if err != nil {
		return err
	}
	if !ok {
		rt.Printer.Faint("Cancelled.")
		return nil
	}

	if err := ctx.Manager.DeleteVersion(ctx.Ctx, path, id); err != nil {
		return err
	}
	rt.Printer.Success(fmt.Sprintf("Deleted %s of %s", id, path))
	return nil
}

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(&Command{}, middleware.Default()...),
	)
}
