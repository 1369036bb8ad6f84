// Package blob stores the raw bytes of each snapshot at
// <workspace>/<versions>/<rel>.<id>.
package blob

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/keshon/verskeep/internal/config"
	"github.com/keshon/verskeep/internal/fs"
	"github.com/keshon/verskeep/internal/util"
)

// ErrBlobNotFound is returned by Load when the blob file does not exist.
var ErrBlobNotFound = fmt.Errorf("snapshot blob not found: %w", fs.ErrNotExist)

// idPattern is the shape of ids the allocator hands out.
var idPattern = regexp.MustCompile(`^v\d+\.\d+$`)

// BlobContext handles blob storage for every workspace.
type BlobContext struct {
	Layout config.Layout
	FS     fs.FS
}

// NewBlobContext creates a BlobContext. A nil fsys means the OS filesystem.
func NewBlobContext(layout config.Layout, fsys fs.FS) *BlobContext {
	if fsys == nil {
		fsys = fs.NewOSFS()
	}
	return &BlobContext{Layout: layout, FS: fsys}
}

// Path returns where the blob for id lives. It performs no I/O.
func (bc *BlobContext) Path(root, original, id string) (string, error) {
	return bc.Layout.BlobPath(root, original, id)
}

// Save writes data as the blob for id, creating mirrored directories and
// replacing any existing blob with the same id.
func (bc *BlobContext) Save(root, original, id string, data []byte) error {
	dst, err := bc.Path(root, original, id)
	if err != nil {
		return err
	}
	if err := bc.FS.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create dir for %q: %w", dst, err)
	}
	if err := util.WriteFileAtomic(bc.FS, dst, data); err != nil {
		return fmt.Errorf("failed to write snapshot %q: %w", id, err)
	}
	return nil
}

// Load returns the blob bytes for id, or ErrBlobNotFound.
func (bc *BlobContext) Load(root, original, id string) ([]byte, error) {
	p, err := bc.Path(root, original, id)
	if err != nil {
		return nil, err
	}
	data, err := bc.FS.ReadFile(p)
	if err != nil {
		if bc.FS.IsNotExist(err) {
			return nil, fmt.Errorf("%q: %w", p, ErrBlobNotFound)
		}
		return nil, fmt.Errorf("failed to read snapshot %q: %w", id, err)
	}
	return data, nil
}

// Remove deletes the blob for id. A missing blob is not an error.
func (bc *BlobContext) Remove(root, original, id string) error {
	p, err := bc.Path(root, original, id)
	if err != nil {
		return err
	}
	if err := bc.FS.Remove(p); err != nil && !bc.FS.IsNotExist(err) {
		return fmt.Errorf("failed to remove snapshot %q: %w", id, err)
	}
	return nil
}

// Exists reports whether the blob for id is present.
func (bc *BlobContext) Exists(root, original, id string) bool {
	p, err := bc.Path(root, original, id)
	if err != nil {
		return false
	}
	fi, err := bc.FS.Stat(p)
	return err == nil && !fi.IsDir()
}

// List returns the ids of all blobs stored for original, sorted by name.
func (bc *BlobContext) List(root, original string) ([]string, error) {
	probe, err := bc.Path(root, original, "")
	if err != nil {
		return nil, err
	}
	dir, prefix := filepath.Dir(probe), filepath.Base(probe)

	entries, err := bc.FS.ReadDir(dir)
	if err != nil {
		if bc.FS.IsNotExist(err) || errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %q: %w", dir, err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, ok := strings.CutPrefix(e.Name(), prefix)
		if ok && idPattern.MatchString(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
