package fs

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/exp/mmap"
)

// Hooks used by OSFS, overridable in tests.
var (
	open       = os.Open
	readFile   = mmapReadFile
	writeFile  = os.WriteFile
	stat       = os.Stat
	readDir    = os.ReadDir
	remove     = os.Remove
	rename     = os.Rename
	createTemp = os.CreateTemp
	mkdirAll   = os.MkdirAll
	isNotExist = func(err error) bool { return errors.Is(err, os.ErrNotExist) }
)

var exists = func(path string) bool {
	_, err := stat(path)
	return err == nil
}

var IsDir = func(path string) bool {
	fi, err := stat(path)
	return err == nil && fi.IsDir()
}

// mmapReadFile maps the file and copies the mapping into a fresh buffer, so
// the returned slice stays valid after the mapping is released.
func mmapReadFile(path string) ([]byte, error) {
	fi, err := stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("read %q: is a directory", path)
	}
	if fi.Size() == 0 {
		// empty or special file, nothing to map
		return os.ReadFile(path)
	}

	r, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	buf := make([]byte, r.Len())
	if _, err := r.ReadAt(buf, 0); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read mapped %q: %w", path, err)
	}
	return buf, nil
}

// getters and setters for test override
func GetOpen() func(string) (*os.File, error)    { return open }
func SetOpen(f func(string) (*os.File, error))   { open = f }
func GetReadFile() func(string) ([]byte, error)  { return readFile }
func SetReadFile(f func(string) ([]byte, error)) { readFile = f }
func GetWriteFile() func(string, []byte, os.FileMode) error {
	return writeFile
}
func SetWriteFile(f func(string, []byte, os.FileMode) error) {
	writeFile = f
}
func GetStat() func(string) (os.FileInfo, error)  { return stat }
func SetStat(f func(string) (os.FileInfo, error)) { stat = f }
func GetRemove() func(string) error               { return remove }
func SetRemove(f func(string) error)              { remove = f }
func GetRename() func(string, string) error       { return rename }
func SetRename(f func(string, string) error)      { rename = f }
func GetMkdirAll() func(string, os.FileMode) error {
	return mkdirAll
}
func SetMkdirAll(f func(string, os.FileMode) error) { mkdirAll = f }
