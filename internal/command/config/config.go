package config

import (
	"fmt"
	"os"

	"github.com/keshon/verskeep/internal/cli/output"
	"github.com/keshon/verskeep/internal/command"
	"github.com/keshon/verskeep/internal/config"
	"github.com/keshon/verskeep/internal/middleware"
	"github.com/spf13/pflag"
)

type Command struct{}

func (c *Command) Name() string      { return "config" }
func (c *Command) Aliases() []string { return []string{"cfg"} }
func (c *Command) Usage() string     { return "config <command>" }
func (c *Command) Brief() string     { return "Manage the verskeep configuration" }
func (c *Command) Help() string {
	return `Manage the verskeep configuration file.

Commands:
  init  Write a configuration file with the defaults.
  show  Print the effective configuration.`
}

func (c *Command) Subcommands() []command.Command {
	return []command.Command{&initCommand{}, &showCommand{}}
}
func (c *Command) Flags(fs *pflag.FlagSet) {}

func (c *Command) Run(ctx *command.Context) error {
	return ctx.Cmd.Help()
}

type initCommand struct{}

func (c *initCommand) Name() string      { return "init" }
func (c *initCommand) Aliases() []string { return nil }
func (c *initCommand) Usage() string     { return "init [path] [options]" }
func (c *initCommand) Brief() string     { return "Write a default configuration file" }
func (c *initCommand) Help() string {
	return `Write a configuration file holding the defaults. Without a path it goes to
~/.config/verskeep/verskeep.yaml (or $XDG_CONFIG_HOME/verskeep).

Options:
  -f, --force  Overwrite an existing file.

Examples:
  verskeep config init
  verskeep config init ./verskeep.yaml --force`
}

func (c *initCommand) Subcommands() []command.Command { return nil }

func (c *initCommand) Flags(fs *pflag.FlagSet) {
	fs.BoolP("force", "f", false, "overwrite an existing file")
}

func (c *initCommand) Run(ctx *command.Context) error {
	if err := ctx.RequireArgs(0, 1); err != nil {
		return err
	}
	path := ctx.Arg(0)
	if path == "" {
		path = config.DefaultPath()
	}

	force, _ := ctx.Flags.GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file %q already exists, use --force to overwrite", path)
	}

	if err := config.Save(config.Default(), path); err != nil {
		return err
	}
	ctx.Runtime.Printer.Success(fmt.Sprintf("Wrote %s", path))
	return nil
}

type showCommand struct{}

func (c *showCommand) Name() string      { return "show" }
func (c *showCommand) Aliases() []string { return nil }
func (c *showCommand) Usage() string     { return "show" }
func (c *showCommand) Brief() string     { return "Print the effective configuration" }
func (c *showCommand) Help() string {
	return `Print the configuration after merging the file, VERSKEEP_* environment
variables and command-line flags. YAML unless -o json is given.`
}

func (c *showCommand) Subcommands() []command.Command { return nil }
func (c *showCommand) Flags(fs *pflag.FlagSet)         {}

func (c *showCommand) Run(ctx *command.Context) error {
	p := ctx.Runtime.Printer
	if p.Structured() {
		return p.Print(ctx.Runtime.Config)
	}
	return output.PrintYAML(p.Writer(), ctx.Runtime.Config)
}

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(&Command{}, middleware.WithDebugArgsPrint(), middleware.WithOperationID()),
	)
}
