package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/keshon/verskeep/internal/fs"
)

// ErrNoWorkspace is returned when no workspace root contains a path.
var ErrNoWorkspace = errors.New("no workspace folder contains the file")

// Resolver maps a file path to the workspace root that owns it.
type Resolver struct {
	roots  []string
	layout Layout
	fs     fs.FS
	getwd  func() (string, error)
}

// NewResolver creates a Resolver over the given roots. With no roots the
// resolver discovers one: the nearest ancestor holding a versions directory,
// else the current working directory.
func NewResolver(roots []string, layout Layout, fsys fs.FS, getwd func() (string, error)) *Resolver {
	if getwd == nil {
		getwd = os.Getwd
	}
	cleaned := make([]string, 0, len(roots))
	for _, r := range roots {
		if r == "" {
			continue
		}
		if abs, err := filepath.Abs(r); err == nil {
			r = abs
		}
		cleaned = append(cleaned, filepath.Clean(r))
	}
	// longest first, so the first match is the longest prefix
	sort.SliceStable(cleaned, func(i, j int) bool { return len(cleaned[i]) > len(cleaned[j]) })
	return &Resolver{roots: cleaned, layout: layout, fs: fsys, getwd: getwd}
}

// Roots returns the configured roots, longest first.
func (r *Resolver) Roots() []string {
	return append([]string(nil), r.roots...)
}

// Resolve returns the workspace root that contains path.
func (r *Resolver) Resolve(path string) (string, error) {
	path = filepath.Clean(path)

	if len(r.roots) > 0 {
		for _, root := range r.roots {
			if contains(root, path) {
				return root, nil
			}
		}
		return "", fmt.Errorf("%q: %w", path, ErrNoWorkspace)
	}

	if root, ok := r.discover(path); ok {
		return root, nil
	}

	cwd, err := r.getwd()
	if err == nil && contains(filepath.Clean(cwd), path) {
		return filepath.Clean(cwd), nil
	}
	return "", fmt.Errorf("%q: %w", path, ErrNoWorkspace)
}

// discover walks up from the file's directory until it finds a directory that
// already holds a versions directory.
func (r *Resolver) discover(path string) (string, bool) {
	dir := filepath.Dir(path)
	for {
		if r.fs.IsDir(r.layout.Root(dir)) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false // reached filesystem root
		}
		dir = parent
	}
}

// contains reports whether path lies strictly below root. Sibling directories
// sharing a name prefix ("/a/foo" vs "/a/foobar") do not match.
func contains(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
