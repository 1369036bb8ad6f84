package fs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryFS is a pure in-memory filesystem for tests. It is safe for
// concurrent use.
type MemoryFS struct {
	mu    sync.RWMutex
	files map[string]memFile
	dirs  map[string]struct{}
}

type memFile struct {
	data    []byte
	modTime time.Time
}

var _ FS = (*MemoryFS)(nil)

func NewMemoryFS() *MemoryFS {
	f := &MemoryFS{
		files: make(map[string]memFile),
		dirs:  make(map[string]struct{}),
	}
	f.dirs["/"] = struct{}{}
	f.dirs["."] = struct{}{}
	return f
}

// normalize paths
func clean(p string) string {
	if p == "" {
		return "."
	}
	return filepath.ToSlash(filepath.Clean(p))
}

func (f *MemoryFS) hasDir(p string) bool {
	_, ok := f.dirs[p]
	return ok
}

func (f *MemoryFS) Open(p string) (io.ReadSeekCloser, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	file, ok := f.files[clean(p)]
	if !ok {
		return nil, &iofs.PathError{Op: "open", Path: p, Err: iofs.ErrNotExist}
	}
	return &memReadSeekCloser{Reader: bytes.NewReader(file.data)}, nil
}

type memReadSeekCloser struct {
	*bytes.Reader
}

func (m *memReadSeekCloser) Close() error { return nil }

func (f *MemoryFS) ReadFile(p string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	file, ok := f.files[clean(p)]
	if !ok {
		return nil, &iofs.PathError{Op: "read", Path: p, Err: iofs.ErrNotExist}
	}
	return append([]byte(nil), file.data...), nil
}

func (f *MemoryFS) WriteFile(p string, data []byte, perm os.FileMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p = clean(p)
	if dir := path.Dir(p); !f.hasDir(dir) {
		return fmt.Errorf("write %q: dir %q: %w", p, dir, iofs.ErrNotExist)
	}
	if f.hasDir(p) {
		return fmt.Errorf("write %q: is a directory", p)
	}
	f.files[p] = memFile{data: append([]byte(nil), data...), modTime: time.Now()}
	return nil
}

func (f *MemoryFS) MkdirAll(p string, perm os.FileMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p = clean(p)
	cur := ""
	if strings.HasPrefix(p, "/") {
		cur = "/"
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." {
			continue
		}
		cur = path.Join(cur, seg)
		if _, ok := f.files[cur]; ok {
			return fmt.Errorf("mkdir %q: not a directory", cur)
		}
		f.dirs[cur] = struct{}{}
	}
	return nil
}

func (f *MemoryFS) Remove(p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p = clean(p)
	if _, ok := f.files[p]; ok {
		delete(f.files, p)
		return nil
	}
	if f.hasDir(p) {
		delete(f.dirs, p)
		return nil
	}
	return &iofs.PathError{Op: "remove", Path: p, Err: iofs.ErrNotExist}
}

func (f *MemoryFS) Rename(oldp, newp string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	oldp, newp = clean(oldp), clean(newp)

	if file, ok := f.files[oldp]; ok {
		if f.hasDir(newp) {
			return fmt.Errorf("rename %q to %q: is a directory", oldp, newp)
		}
		if !f.hasDir(path.Dir(newp)) {
			return &iofs.PathError{Op: "rename", Path: newp, Err: iofs.ErrNotExist}
		}
		delete(f.files, oldp)
		f.files[newp] = file
		return nil
	}

	if f.hasDir(oldp) {
		delete(f.dirs, oldp)
		f.dirs[newp] = struct{}{}
		return nil
	}

	return &iofs.PathError{Op: "rename", Path: oldp, Err: iofs.ErrNotExist}
}

func (f *MemoryFS) Stat(p string) (os.FileInfo, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	p = clean(p)
	if file, ok := f.files[p]; ok {
		return &fakeInfo{name: path.Base(p), size: int64(len(file.data)), modTime: file.modTime}, nil
	}
	if f.hasDir(p) {
		return &fakeInfo{name: path.Base(p), dir: true}, nil
	}
	return nil, &iofs.PathError{Op: "stat", Path: p, Err: iofs.ErrNotExist}
}

func (f *MemoryFS) ReadDir(p string) ([]os.DirEntry, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	p = clean(p)
	if !f.hasDir(p) {
		return nil, &iofs.PathError{Op: "readdir", Path: p, Err: iofs.ErrNotExist}
	}

	prefix := p
	if prefix != "/" {
		prefix += "/"
	}

	seen := map[string]bool{}
	var out []os.DirEntry
	add := func(name string, isDir bool) {
		if name == "" || name == "." || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, fakeDirEntry{name: name, isDir: isDir})
	}

	// dirs first
	for dp := range f.dirs {
		if rest, ok := strings.CutPrefix(dp, prefix); ok {
			add(strings.Split(rest, "/")[0], true)
		}
	}
	for fp := range f.files {
		if rest, ok := strings.CutPrefix(fp, prefix); ok {
			name, _, nested := strings.Cut(rest, "/")
			add(name, nested)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

func (f *MemoryFS) CreateTempFile(dir, pattern string) (io.WriteCloser, string, error) {
	f.mu.RLock()
	ok := f.hasDir(clean(dir))
	f.mu.RUnlock()
	if !ok {
		return nil, "", &iofs.PathError{Op: "createtemp", Path: dir, Err: iofs.ErrNotExist}
	}

	name := strings.Replace(pattern, "*", uuid.NewString(), 1)
	if name == pattern {
		name = pattern + uuid.NewString()
	}
	tmpName := clean(path.Join(clean(dir), name))

	buf := &bytes.Buffer{}
	wc := &memWriteCloser{
		buf: buf,
		onClose: func() {
			f.mu.Lock()
			f.files[tmpName] = memFile{data: buf.Bytes(), modTime: time.Now()}
			f.mu.Unlock()
		},
	}
	return wc, tmpName, nil
}

type memWriteCloser struct {
	buf     *bytes.Buffer
	onClose func()
}

func (m *memWriteCloser) Write(p []byte) (int, error) { return m.buf.Write(p) }
func (m *memWriteCloser) Close() error {
	if m.onClose != nil {
		m.onClose()
		m.onClose = nil
	}
	return nil
}

func (f *MemoryFS) IsNotExist(err error) bool { return errors.Is(err, iofs.ErrNotExist) }

func (f *MemoryFS) IsDir(p string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.hasDir(clean(p))
}

func (f *MemoryFS) Exists(p string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	p = clean(p)
	_, isFile := f.files[p]
	return isFile || f.hasDir(p)
}

type fakeInfo struct {
	name    string
	size    int64
	dir     bool
	modTime time.Time
}

func (f *fakeInfo) Name() string { return f.name }
func (f *fakeInfo) Size() int64  { return f.size }
func (f *fakeInfo) Mode() iofs.FileMode {
	if f.dir {
		return iofs.ModeDir | 0o755
	}
	return 0o644
}
func (f *fakeInfo) ModTime() time.Time { return f.modTime }
func (f *fakeInfo) IsDir() bool        { return f.dir }
func (f *fakeInfo) Sys() any           { return nil }

type fakeDirEntry struct {
	name  string
	isDir bool
}

func (d fakeDirEntry) Name() string { return d.name }
func (d fakeDirEntry) IsDir() bool  { return d.isDir }
func (d fakeDirEntry) Type() iofs.FileMode {
	if d.isDir {
		return iofs.ModeDir
	}
	return 0
}
func (d fakeDirEntry) Info() (os.FileInfo, error) { return &fakeInfo{name: d.name, dir: d.isDir}, nil }
