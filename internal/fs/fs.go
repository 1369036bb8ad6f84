// Package fs is the filesystem seam under every store. Production code uses
// OSFS; tests use MemoryFS or override the OSFS hooks to inject failures.
package fs

import (
	"io"
	iofs "io/fs"
	"os"
)

// ErrNotExist is returned by MemoryFS and wrapped by OSFS for missing paths.
var ErrNotExist = iofs.ErrNotExist

// FS abstracts filesystem operations used by the snapshot and metadata stores.
type FS interface {
	Open(path string) (io.ReadSeekCloser, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
	Remove(path string) error
	Rename(oldPath, newPath string) error
	Stat(path string) (os.FileInfo, error)
	ReadDir(path string) ([]os.DirEntry, error)

	// CreateTempFile creates a uniquely named file in dir and returns a writer
	// and its path. The caller renames or removes it.
	CreateTempFile(dir, pattern string) (io.WriteCloser, string, error)

	IsNotExist(err error) bool
	Exists(path string) bool
	IsDir(path string) bool
}
