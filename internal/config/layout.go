package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	DefaultVersionsDir = ".versions"

	MetadataSuffix = ".metadata.json"
	LockSuffix     = ".watch.lock"
)

// Layout derives every storage location from (workspace root, original path).
// Both the snapshot store and the metadata store go through it, so they never
// disagree on where a file lives.
type Layout struct {
	VersionsDir string
}

// NewLayout returns a Layout rooted at versionsDir, or the default when empty.
func NewLayout(versionsDir string) Layout {
	if versionsDir == "" {
		versionsDir = DefaultVersionsDir
	}
	return Layout{VersionsDir: versionsDir}
}

// Root returns the storage directory of a workspace.
func (l Layout) Root(workspace string) string {
	return filepath.Join(workspace, l.VersionsDir)
}

// RelPath returns original relative to workspace. It fails when original is
// not inside workspace.
func (l Layout) RelPath(workspace, original string) (string, error) {
	rel, err := filepath.Rel(workspace, original)
	if err != nil {
		return "", fmt.Errorf("relative path of %q in %q: %w", original, workspace, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q is not inside workspace %q", original, workspace)
	}
	return rel, nil
}

// base is the storage path of original without any suffix.
func (l Layout) base(workspace, original string) (string, error) {
	rel, err := l.RelPath(workspace, original)
	if err != nil {
		return "", err
	}
	return filepath.Join(l.Root(workspace), rel), nil
}

// BlobPath is <workspace>/<versions>/<rel>.<id>.
func (l Layout) BlobPath(workspace, original, id string) (string, error) {
	b, err := l.base(workspace, original)
	if err != nil {
		return "", err
	}
	return b + "." + id, nil
}

// MetadataPath is <workspace>/<versions>/<rel>.metadata.json.
func (l Layout) MetadataPath(workspace, original string) (string, error) {
	b, err := l.base(workspace, original)
	if err != nil {
		return "", err
	}
	return b + MetadataSuffix, nil
}

// LockPath is <workspace>/<versions>/<rel>.watch.lock.
func (l Layout) LockPath(workspace, original string) (string, error) {
	b, err := l.base(workspace, original)
	if err != nil {
		return "", err
	}
	return b + LockSuffix, nil
}
