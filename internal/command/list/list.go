package list

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/keshon/verskeep/internal/command"
	"github.com/keshon/verskeep/internal/middleware"
	"github.com/keshon/verskeep/internal/store/meta"
	"github.com/keshon/verskeep/internal/view"
	"github.com/spf13/pflag"
)

type Command struct{}

func (c *Command) Name() string      { return "list" }
func (c *Command) Aliases() []string { return []string{"ls"} }
func (c *Command) Usage() string     { return "list <file> [options]" }
func (c *Command) Brief() string     { return "List the snapshots of a file" }
func (c *Command) Help() string {
	return `List the saved snapshots of a file, oldest first. The current snapshot is
marked with "*".

Options:
  -n, --limit <count>  Show only the newest N snapshots.

Usage:
  verskeep list <file> [options]

Examples:
  verskeep list notes.txt
  verskeep ls notes.txt -n 5
  verskeep ls notes.txt -o json`
}

func (c *Command) Subcommands() []command.Command { return nil }

func (c *Command) Flags(fs *pflag.FlagSet) {
	fs.IntP("limit", "n", 0, "show only the newest N snapshots")
}

// Row is one listed snapshot.
type Row struct {
	ID          string    `json:"id" yaml:"id"`
	Current     bool      `json:"current" yaml:"current"`
	Created     time.Time `json:"created" yaml:"created"`
	Description string    `json:"description" yaml:"description"`
	Size        int64     `json:"size" yaml:"size"`
	Hash        string    `json:"hash" yaml:"hash"`
}

// Listing renders rows as a table.
type Listing []Row

func (l Listing) Headers() []string {
	return []string{"", "ID", "CREATED", "SIZE", "DESCRIPTION"}
}

func (l Listing) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		mark := ""
		if r.Current {
			mark = "*"
		}
		rows = append(rows, []string{
			mark,
			r.ID,
			fmt.Sprintf("%s (%s)", r.Created.Format("2006-01-02 15:04:05"), humanize.Time(r.Created)),
			humanize.Bytes(uint64(r.Size)),
			r.Description,
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

	versions, err := ctx.Manager.GetVersions(ctx.Ctx, path)
	if err != nil {
		return err
	}
	cur, _, err := ctx.Manager.Current(ctx.Ctx, path)
	if err != nil {
		return err
	}

	if n, _ := ctx.Flags.GetInt("limit"); n > 0 && n < len(versions) {
		versions = versions[len(versions)-n:]
	}

	rows := toRows(versions, cur.ID)
	if len(rows) == 0 && !rt.Printer.Structured() {
		rt.Printer.Faint(view.NoVersions)
		return nil
	}
	return rt.Printer.Print(rows)
}

func toRows(versions []meta.Version, currentID string) Listing {
	rows := make(Listing, 0, len(versions))
	for _, v := range versions {
		rows = append(rows, Row{
			ID:          v.ID,
			Current:     v.ID == currentID,
			Created:     v.CreatedAt.Local(),
			Description: v.Description,
			Size:        v.SizeBytes,
			Hash:        v.ContentHash,
		})
	}
	return rows
}

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(&Command{}, middleware.Default()...),
	)
}
