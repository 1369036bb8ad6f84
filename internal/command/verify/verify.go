package verify

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/keshon/verskeep/internal/command"
	"github.com/keshon/verskeep/internal/middleware"
	"github.com/keshon/verskeep/internal/progress"
	"github.com/keshon/verskeep/internal/version"
	"github.com/keshon/verskeep/internal/view"
	"github.com/spf13/pflag"
)

type Command struct{}

func (c *Command) Name() string      { return "verify" }
func (c *Command) Aliases() []string { return []string{"check"} }
func (c *Command) Usage() string     { return "verify <file> [options]" }
func (c *Command) Brief() string     { return "Check the snapshots of a file for damage" }
func (c *Command) Help() string {
	return `Check every snapshot blob of a file against its recorded hash and size.

Statuses:
  ok       Blob present and intact.
  missing  Blob file is gone.
  damaged  Blob content or size does not match the descriptor.

Blobs that no descriptor references (orphans, left behind by an interrupted
save) are listed and can be removed with --clean.

Options:
      --clean  Remove orphan blobs.

Usage:
  verskeep verify <file> [options]

Examples:
  verskeep verify notes.txt
  verskeep verify notes.txt --clean`
}

func (c *Command) Subcommands() []command.Command { return nil }

func (c *Command) Flags(fs *pflag.FlagSet) {
	fs.Bool("clean", false, "remove orphan blobs")
}

// checks renders a report as a table.
type checks []version.Check

func (cs checks) Headers() []string {
	return []string{"ID", "STATUS", "SIZE", "DESCRIPTION"}
}

func (cs checks) Rows() [][]string {
	rows := make([][]string, 0, len(cs))
	for _, c := range cs {
		rows = append(rows, []string{
			c.Version.ID,
			c.Status.String(),
			humanize.Bytes(uint64(c.Version.SizeBytes)),
			c.Version.Description,
		})
	}
	return rows
}

func (c *Command) Run(ctx *command.Context) error {
	if err := ctx.RequireArgs(1, 1); err != nil {
		return err
	}
	rt := ctx.Runtime
	path := ctx.Arg(0)

	report, err := verify(ctx, path)
	if err != nil {
		return err
	}

	if clean, _ := ctx.Flags.GetBool("clean"); clean && len(report.Orphans) > 0 {
		removed, err := ctx.Manager.CleanOrphans(ctx.Ctx, path)
		if err != nil {
			return err
		}
		if !rt.Printer.Structured() {
			rt.Printer.Success(fmt.Sprintf("Removed %d orphan blob(s): %s", len(removed), strings.Join(removed, ", ")))
		}
		report.Orphans = nil
	}

	if rt.Printer.Structured() {
		if err := rt.Printer.Print(report); err != nil {
			return err
		}
	} else if err := render(ctx, report); err != nil {
		return err
	}

	if _, missing, damaged := report.Counts(); missing+damaged > 0 {
		return fmt.Errorf("verification failed: %d missing, %d damaged", missing, damaged)
	}
	return nil
}

// verify shows a spinner on stderr while checking, when attached to a
// terminal.
func verify(ctx *command.Context, path string) (*version.Report, error) {
	rt := ctx.Runtime
	if !rt.Interactive || rt.Printer.Structured() {
		return ctx.Manager.Verify(ctx.Ctx, path)
	}

	versions, err := ctx.Manager.GetVersions(ctx.Ctx, path)
	if err != nil {
		return nil, err
	}
	bar := progress.NewProgress(rt.Err, len(versions), "Checking versions")
	defer bar.Finish()
	return ctx.Manager.VerifyWithProgress(ctx.Ctx, path, func(version.Check) { bar.Increment() })
}

func render(ctx *command.Context, report *version.Report) error {
	p := ctx.Runtime.Printer
	if len(report.Checks) == 0 {
		p.Faint(view.NoVersions)
	} else if err := p.Print(checks(report.Checks)); err != nil {
		return err
	}

	if len(report.Orphans) > 0 {
		p.Warning(fmt.Sprintf("Orphan blobs: %s (run with --clean to remove)", strings.Join(report.Orphans, ", ")))
	}

	ok, missing, damaged := report.Counts()
	summary := fmt.Sprintf("%d ok, %d missing, %d damaged", ok, missing, damaged)
	if report.Healthy() {
		p.Success(summary)
	} else {
		p.Warning(summary)
	}
	return nil
}

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(&Command{}, middleware.Default()...),
	)
}
