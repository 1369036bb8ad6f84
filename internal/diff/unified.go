package diff

import (
	"context"
	"fmt"
	"io"

	"github.com/keshon/verskeep/internal/fs"
	"github.com/pmezard/go-difflib/difflib"
)

// UnifiedViewer writes a unified diff of the two files to Out.
type UnifiedViewer struct {
	Out     io.Writer
	FS      fs.FS
	Context int
}

func NewUnifiedViewer(out io.Writer, fsys fs.FS, contextLines int) *UnifiedViewer {
	if fsys == nil {
		fsys = fs.NewOSFS()
	}
	return &UnifiedViewer{Out: out, FS: fsys, Context: contextLines}
}

func (v *UnifiedViewer) Compare(ctx context.Context, left, right, title string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a, err := v.FS.ReadFile(left)
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", left, err)
	}
	b, err := v.FS.ReadFile(right)
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", right, err)
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: left,
		ToFile:   right,
		Context:  v.Context,
	})
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(v.Out, title); err != nil {
		return err
	}
	if text == "" {
		_, err = fmt.Fprintln(v.Out, "No differences.")
		return err
	}
	_, err = io.WriteString(v.Out, text)
	return err
}
