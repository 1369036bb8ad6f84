package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/keshon/verskeep/internal/cli/output"
	"github.com/keshon/verskeep/internal/cli/prompt"
	"github.com/keshon/verskeep/internal/config"
	"github.com/keshon/verskeep/internal/fs"
	"github.com/keshon/verskeep/internal/logger"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Runtime is the per-invocation state shared by every command. It is
// filled in before the selected command runs.
type Runtime struct {
	Config   *config.Config
	Log      *logger.Logger
	Printer  *output.Printer
	Prompter prompt.Prompter
	FS       fs.FS

	// Interactive is false when prompts cannot be answered.
	Interactive bool

	Out io.Writer
	Err io.Writer
}

// Streams are the process I/O the CLI runs against.
type Streams struct {
	Out      io.Writer
	Err      io.Writer
	Prompter prompt.Prompter

	Interactive bool
	Color       bool

	// FS defaults to the OS filesystem.
	FS fs.FS
}

// DefaultStreams returns the standard streams of the process.
func DefaultStreams() Streams {
	stdinTTY := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	stdoutTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	return Streams{
		Out:         os.Stdout,
		Err:         os.Stderr,
		Prompter:    prompt.NewTerminal(),
		Interactive: stdinTTY && stdoutTTY,
		Color:       stdoutTTY && os.Getenv("NO_COLOR") == "",
	}
}

// NewRoot builds the verskeep root command with every registered command
// mounted on it.
func NewRoot(streams Streams) *cobra.Command {
	root, _ := newRoot(streams)
	return root
}

func newRoot(streams Streams) (*cobra.Command, *Runtime) {
	rt := &Runtime{
		Prompter:    streams.Prompter,
		FS:          streams.FS,
		Interactive: streams.Interactive,
		Out:         streams.Out,
		Err:         streams.Err,
	}
	if rt.FS == nil {
		rt.FS = fs.NewOSFS()
	}

	root := &cobra.Command{
		Use:   "verskeep",
		Short: "Keep local snapshots of individual files",
		Long: `verskeep saves point-in-time snapshots of single files inside a workspace,
lists them, diffs them and restores them.

Snapshots live next to the workspace in a versions directory (".versions" by
default) that mirrors the workspace tree.

Use "verskeep [command] --help" for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.setup(cmd, streams)
		},
	}
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)

	pf := root.PersistentFlags()
	pf.String("config", "", "Config file (default ./verskeep.yaml or ~/.config/verskeep/verskeep.yaml)")
	pf.StringSlice("workspace", nil, "Workspace root (repeatable, overrides config)")
	pf.StringP("output", "o", "table", "Output format (table|json|yaml)")
	pf.Bool("no-color", false, "Disable colored output")
	pf.String("log-level", "", "Log level (debug|info|warn|error)")

	for _, c := range AllCommands() {
		root.AddCommand(toCobra(c, rt))
	}
	root.CompletionOptions.DisableDefaultCmd = true

	return root, rt
}

// setup loads the configuration and applies flag overrides.
func (rt *Runtime) setup(cmd *cobra.Command, streams Streams) error {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if ws, _ := flags.GetStringSlice("workspace"); len(ws) > 0 {
		cfg.Workspaces = ws
	}
	if lvl, _ := flags.GetString("log-level"); lvl != "" {
		cfg.Logging.Level = strings.ToUpper(lvl)
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid --log-level %q: %w", lvl, err)
		}
	}

	outFlag, _ := flags.GetString("output")
	format, err := output.ParseFormat(outFlag)
	if err != nil {
		return err
	}
	noColor, _ := flags.GetBool("no-color")
	color := streams.Color && !noColor

	log, err := newLogger(cfg.Logging, streams)
	if err != nil {
		return err
	}

	rt.Config = cfg
	rt.Log = log
	rt.Printer = output.NewPrinter(streams.Out, format, color)
	return nil
}

// newLogger routes stdout and stderr logging to the given streams.
func newLogger(cfg config.LoggingConfig, streams Streams) (*logger.Logger, error) {
	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		return logger.NewWithWriter(streams.Err, cfg.Level, cfg.Format), nil
	case "stdout":
		return logger.NewWithWriter(streams.Out, cfg.Level, cfg.Format), nil
	}
	return logger.New(logger.Config{Level: cfg.Level, Format: cfg.Format, Output: cfg.Output})
}

func toCobra(c Command, rt *Runtime) *cobra.Command {
	cc := &cobra.Command{
		Use:     c.Usage(),
		Short:   c.Brief(),
		Long:    c.Help(),
		Aliases: c.Aliases(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(&Context{
				Ctx:     cmd.Context(),
				Args:    args,
				Flags:   cmd.Flags(),
				Cmd:     cmd,
				Runtime: rt,
			})
		},
	}
	c.Flags(cc.Flags())
	for _, sub := range c.Subcommands() {
		cc.AddCommand(toCobra(sub, rt))
	}
	return cc
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, args []string, streams Streams) int {
	root, rt := newRoot(streams)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	defer func() {
		if rt.Log != nil {
			_ = rt.Log.Close()
		}
	}()
	if err == nil {
		return 0
	}

	if rt.Log != nil {
		rt.Log.ErrorCtx(ctx, "command failed", "error", err)
	}
	noColor, _ := root.PersistentFlags().GetBool("no-color")
	errOut := output.NewPrinter(streams.Err, output.FormatTable, streams.Color && !noColor)
	if prompt.IsAborted(err) {
		errOut.Warning("Aborted.")
		return 1
	}
	errOut.Error("Error: " + err.Error())
	return 1
}
