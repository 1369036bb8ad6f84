package diff

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

const (
	placeholderLeft  = "{left}"
	placeholderRight = "{right}"
	placeholderTitle = "{title}"
)

// ExecViewer runs an external diff tool. Argv is a template: {left},
// {right} and {title} are substituted; when neither path placeholder is
// present both paths are appended.
type ExecViewer struct {
	Argv   []string
	Stdout io.Writer
	Stderr io.Writer

	// run is replaced in tests.
	run func(cmd *exec.Cmd) error
}

func NewExecViewer(argv []string, stdout, stderr io.Writer) *ExecViewer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &ExecViewer{Argv: argv, Stdout: stdout, Stderr: stderr, run: (*exec.Cmd).Run}
}

// Command expands the template for one comparison.
func (v *ExecViewer) Command(left, right, title string) ([]string, error) {
	if len(v.Argv) == 0 {
		return nil, errors.New("no diff tool configured")
	}
	r := strings.NewReplacer(
		placeholderLeft, left,
		placeholderRight, right,
		placeholderTitle, title,
	)

	hasPaths := false
	out := make([]string, 0, len(v.Argv)+2)
	for _, a := range v.Argv {
		if strings.Contains(a, placeholderLeft) || strings.Contains(a, placeholderRight) {
			hasPaths = true
		}
		out = append(out, r.Replace(a))
	}
	if !hasPaths {
		out = append(out, left, right)
	}
	return out, nil
}

func (v *ExecViewer) Compare(ctx context.Context, left, right, title string) error {
	argv, err := v.Command(left, right, title)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = v.Stdout
	cmd.Stderr = v.Stderr

	run := v.run
	if run == nil {
		run = (*exec.Cmd).Run
	}
	if err := run(cmd); err != nil {
		// diff(1) style tools exit 1 when inputs differ
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil
		}
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}
