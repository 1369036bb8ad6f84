package diff

import "os/exec"

// SetRunner replaces how ExecViewer starts its command.
func (v *ExecViewer) SetRunner(run func(*exec.Cmd) error) { v.run = run }
