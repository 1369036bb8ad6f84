// Package prompt provides interactive terminal prompts for CLI commands.
package prompt

import (
	"errors"
	"io"
	"os"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user aborts a prompt (Ctrl+C).
var ErrAborted = errors.New("aborted")

// IsAborted returns true if the error indicates the user aborted (Ctrl+C).
func IsAborted(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, ErrAborted)
}

// wrapError converts promptui interrupt errors to ErrAborted.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if IsAborted(err) {
		return ErrAborted
	}
	return err
}

// Prompter asks the operator questions. Commands depend on it so tests can
// script the answers.
type Prompter interface {
	Confirm(label string, defaultYes bool) (bool, error)
	Select(label string, options []SelectOption) (string, error)
	Input(label, defaultValue string) (string, error)
}

// Terminal prompts on a terminal through promptui.
type Terminal struct {
	In  io.ReadCloser
	Out io.WriteCloser
}

var _ Prompter = (*Terminal)(nil)

// NewTerminal returns a Terminal on stdin and stdout.
func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stdout}
}

// Input prompts for text input.
func (t *Terminal) Input(label, defaultValue string) (string, error) {
	p := promptui.Prompt{
		Label:   label,
		Default: defaultValue,
		Stdin:   t.In,
		Stdout:  t.Out,
	}
	result, err := p.Run()
	return result, wrapError(err)
}
