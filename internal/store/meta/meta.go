// Package meta persists the per-file version record at
// <workspace>/<versions>/<rel>.metadata.json.
package meta

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/keshon/verskeep/internal/config"
	"github.com/keshon/verskeep/internal/fs"
	"github.com/keshon/verskeep/internal/util"
)

// MetaContext reads and writes version records. It is the only writer of
// metadata files.
type MetaContext struct {
	Layout config.Layout
	FS     fs.FS
	Now    func() time.Time
}

// NewMetaContext creates a MetaContext. A nil fsys means the OS filesystem.
func NewMetaContext(layout config.Layout, fsys fs.FS) *MetaContext {
	if fsys == nil {
		fsys = fs.NewOSFS()
	}
	return &MetaContext{Layout: layout, FS: fsys, Now: time.Now}
}

// Read returns the record for original. A missing or unparsable file yields
// an empty record.
func (mc *MetaContext) Read(root, original string) (*Record, error) {
	path, err := mc.Layout.MetadataPath(root, original)
	if err != nil {
		return nil, err
	}
	data, err := mc.FS.ReadFile(path)
	if err != nil {
		if mc.FS.IsNotExist(err) {
			return &Record{}, nil
		}
		return nil, fmt.Errorf("failed to read metadata %q: %w", path, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return &Record{}, nil
	}
	if _, ok := rec.Versions.Get(rec.CurrentVersion); !ok {
		rec.CurrentVersion = ""
	}
	return &rec, nil
}

// Write persists rec as indented JSON through a temp file and rename.
func (mc *MetaContext) Write(root, original string, rec *Record) error {
	path, err := mc.Layout.MetadataPath(root, original)
	if err != nil {
		return err
	}
	if err := mc.FS.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metadata dir: %w", err)
	}
	if err := util.WriteJSON(mc.FS, path, rec); err != nil {
		return fmt.Errorf("failed to write metadata %q: %w", path, err)
	}
	return nil
}

// AddDescriptor inserts or replaces v, makes it current and persists the
// record.
func (mc *MetaContext) AddDescriptor(root, original string, v Version) (*Record, error) {
	rec, err := mc.Read(root, original)
	if err != nil {
		return nil, err
	}
	rec.Versions.Set(v)
	rec.CurrentVersion = v.ID
	rec.LastUpdated = NewTimestamp(mc.Now())

	if err := mc.Write(root, original, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// RemoveDescriptor deletes id from the record. When id is unknown nothing is
// written and found is false. Removing the current version promotes the
// newest remaining one.
func (mc *MetaContext) RemoveDescriptor(root, original, id string) (rec *Record, found bool, err error) {
	rec, err = mc.Read(root, original)
	if err != nil {
		return nil, false, err
	}
	if !rec.Versions.Delete(id) {
		return rec, false, nil
	}

	if rec.CurrentVersion == id {
		rec.CurrentVersion = newest(rec.Versions.All())
	}
	rec.LastUpdated = NewTimestamp(mc.Now())

	if err := mc.Write(root, original, rec); err != nil {
		return nil, true, err
	}
	return rec, true, nil
}

// newest returns the id with the greatest timestamp; on a tie the later
// inserted one wins.
func newest(vs []Version) string {
	if len(vs) == 0 {
		return ""
	}
	best := vs[0]
	for _, v := range vs[1:] {
		if v.CreatedAt.Millis() >= best.CreatedAt.Millis() {
			best = v
		}
	}
	return best.ID
}
