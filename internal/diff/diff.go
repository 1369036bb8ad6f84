// Package diff asks a viewer to compare a snapshot with the live file or two
// snapshots with each other.
package diff

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/keshon/verskeep/internal/config"
	"github.com/keshon/verskeep/internal/fs"
	"github.com/keshon/verskeep/internal/logger"
	"github.com/keshon/verskeep/internal/store/meta"
)

// TimeLayout formats snapshot timestamps in titles and listings.
const TimeLayout = "2006-01-02 15:04:05"

// Viewer shows two files side by side.
type Viewer interface {
	Compare(ctx context.Context, left, right, title string) error
}

// Locator finds snapshots and their blobs.
type Locator interface {
	GetVersion(ctx context.Context, path, id string) (meta.Version, error)
	BlobPath(ctx context.Context, path, id string) (string, error)
}

// Presenter builds diff requests for a Viewer.
type Presenter struct {
	locator Locator
	viewer  Viewer
	log     *logger.Logger
}

func NewPresenter(locator Locator, viewer Viewer, log *logger.Logger) *Presenter {
	if log == nil {
		log = logger.Nop()
	}
	return &Presenter{locator: locator, viewer: viewer, log: log}
}

// ShowDiff compares snapshot v (left) with the live file (right).
func (p *Presenter) ShowDiff(ctx context.Context, path string, v meta.Version) error {
	left, err := p.locator.BlobPath(ctx, path, v.ID)
	if err != nil {
		return fmt.Errorf("failed to locate version %q: %w", v.ID, err)
	}
	right, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	title := CurrentTitle(v)
	p.log.DebugCtx(ctx, "showing diff", logger.KeyFile, right, logger.KeyVersion, v.ID)
	if err := p.viewer.Compare(ctx, left, right, title); err != nil {
		return fmt.Errorf("failed to show diff %q: %w", title, err)
	}
	return nil
}

// CompareTwoVersions compares snapshot a (left) with snapshot b (right).
func (p *Presenter) CompareTwoVersions(ctx context.Context, path, a, b string) error {
	paths := make([]string, 0, 2)
	for _, id := range []string{a, b} {
		if _, err := p.locator.GetVersion(ctx, path, id); err != nil {
			return err
		}
		bp, err := p.locator.BlobPath(ctx, path, id)
		if err != nil {
			return fmt.Errorf("failed to locate version %q: %w", id, err)
		}
		paths = append(paths, bp)
	}

	title := CompareTitle(a, b)
	p.log.DebugCtx(ctx, "comparing versions", logger.KeyFile, path, "left", a, "right", b)
	if err := p.viewer.Compare(ctx, paths[0], paths[1], title); err != nil {
		return fmt.Errorf("failed to show diff %q: %w", title, err)
	}
	return nil
}

// CurrentTitle is "Current ↔ <id> (<description or local time>)".
func CurrentTitle(v meta.Version) string {
	label := v.Description
	if label == "" {
		label = v.CreatedAt.Local().Format(TimeLayout)
	}
	return fmt.Sprintf("Current ↔ %s (%s)", v.ID, label)
}

// CompareTitle is "<a> ↔ <b>".
func CompareTitle(a, b string) string {
	return fmt.Sprintf("%s ↔ %s", a, b)
}

// NewViewer returns an ExecViewer when cfg names a tool, otherwise a
// UnifiedViewer writing to out.
func NewViewer(cfg config.DiffConfig, out, errOut io.Writer, fsys fs.FS) Viewer {
	if len(cfg.Tool) > 0 {
		return NewExecViewer(cfg.Tool, out, errOut)
	}
	return NewUnifiedViewer(out, fsys, cfg.Context)
}
