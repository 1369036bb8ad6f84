package watch

import (
	"fmt"

	"github.com/keshon/verskeep/internal/command"
	"github.com/keshon/verskeep/internal/middleware"
	"github.com/keshon/verskeep/internal/store/meta"
	"github.com/keshon/verskeep/internal/watch"
	"github.com/spf13/pflag"
)

type Command struct{}

func (c *Command) Name() string      { return "watch" }
func (c *Command) Aliases() []string { return nil }
func (c *Command) Usage() string     { return "watch <file> [options]" }
func (c *Command) Brief() string     { return "Auto-save a file whenever it changes" }
func (c *Command) Help() string {
	return `Watch a file and save a snapshot after every burst of writes, once the
file has been quiet for the debounce interval. Saves are skipped when the
content matches the current snapshot. Stop with Ctrl+C.

Only one watcher per file is allowed.

Options:
      --debounce <duration>  Quiet period before saving (default from config, 500ms).

Usage:
  verskeep watch <file> [options]

Examples:
  verskeep watch notes.txt
  verskeep watch notes.txt --debounce 2s`
}

func (c *Command) Subcommands() []command.Command { return nil }

func (c *Command) Flags(fs *pflag.FlagSet) {
	fs.Duration("debounce", 0, "quiet period before saving")
}

func (c *Command) Run(ctx *command.Context) error {
	if err := ctx.RequireArgs(1, 1); err != nil {
		return err
	}
	rt := ctx.Runtime
	path := ctx.Arg(0)

	debounce := rt.Config.Watch.Debounce
	if d, _ := ctx.Flags.GetDuration("debounce"); d > 0 {
		debounce = d
	}

	w := watch.New(ctx.Manager, debounce, rt.Log)
	w.OnReady = func() {
		rt.Printer.Faint(fmt.Sprintf("Watching %s (debounce %s), press Ctrl+C to stop", path, debounce))
	}
	w.OnSave = func(v meta.Version) {
		rt.Printer.Success(fmt.Sprintf("Saved %s of %s", v.ID, path))
	}
	return w.Run(ctx.Ctx, path)
}

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(&Command{}, middleware.Default()...),
	)
}
