// Package pick lets commands ask the operator for a snapshot when none was
// given on the command line.
package pick

import (
	"errors"
	"fmt"

	"github.com/keshon/verskeep/internal/cli/prompt"
	"github.com/keshon/verskeep/internal/command"
	"github.com/keshon/verskeep/internal/view"
)

// ErrNotInteractive is returned when a snapshot must be chosen but no
// terminal is attached.
var ErrNotInteractive = errors.New("no version id given and not running in a terminal")

// Version prompts for one of the snapshots of path, newest first.
func Version(ctx *command.Context, path, label string) (string, error) {
	rt := ctx.Runtime
	if !rt.Interactive {
		return "", ErrNotInteractive
	}

	versions, err := ctx.Manager.GetVersions(ctx.Ctx, path)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", fmt.Errorf("%s: %s", path, view.NoVersions)
	}

	opts := make([]prompt.SelectOption, 0, len(versions))
	for i := len(versions) - 1; i >= 0; i-- {
		item := view.SnapshotItem(versions[i])
		opts = append(opts, prompt.SelectOption{
			Label:       item.Label,
			Value:       versions[i].ID,
			Description: item.Tooltip,
		})
	}
	return rt.Prompter.Select(label, opts)
}
