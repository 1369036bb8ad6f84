package save

import (
	"errors"
	"fmt"

	"github.com/keshon/verskeep/internal/command"
	"github.com/keshon/verskeep/internal/middleware"
	"github.com/spf13/pflag"
)

type Command struct{}

func (c *Command) Name() string      { return "save" }
func (c *Command) Aliases() []string { return []string{"snap"} }
func (c *Command) Usage() string     { return "save <file> [options]" }
func (c *Command) Brief() string     { return "Save a snapshot of a file" }
func (c *Command) Help() string {
	return `Save the current content of a file as a new snapshot and make it current.

Options:
  -m, --message <text>  Description of the snapshot.
  -i, --interactive     Prompt for the description.

Usage:
  verskeep save <file> [options]

Examples:
  verskeep save notes.txt
  verskeep save notes.txt -m "before refactor"
  verskeep save notes.txt -i`
}

func (c *Command) Subcommands() []command.Command { return nil }

func (c *Command) Flags(fs *pflag.FlagSet) {
	fs.StringP("message", "m", "", "description of the snapshot")
	fs.BoolP("interactive", "i", false, "prompt for the description")
}

func (c *Command) Run(ctx *command.Context) error {
	if err := ctx.RequireArgs(1, 1); err != nil {
		return err
	}
	rt := ctx.Runtime
	path := ctx.Arg(0)

	desc, _ := ctx.Flags.GetString("message")
	if interactive, _ := ctx.Flags.GetBool("interactive"); interactive {
		if !rt.Interactive {
			return errors.New("--interactive requires a terminal")
		}
		in, err := rt.Prompter.Input("Description (optional)", desc)
		if err != nil {
			return err
		}
		desc = in
	}

	v, err := ctx.Manager.SaveVersion(ctx.Ctx, path, desc)
	if err != nil {
		return err
	}

	if rt.Printer.Structured() {
		return rt.Printer.Print(v)
	}
	rt.Printer.Success(fmt.Sprintf("Saved %s of %s", v.ID, path))
	return nil
}

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(&Command{}, middleware.Default()...),
	)
}
