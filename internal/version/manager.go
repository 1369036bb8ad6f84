// Package version implements saving, listing, restoring and deleting file
// snapshots on top of the blob and metadata stores.
package version

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/keshon/verskeep/internal/config"
	"github.com/keshon/verskeep/internal/fs"
	"github.com/keshon/verskeep/internal/hash"
	"github.com/keshon/verskeep/internal/logger"
	"github.com/keshon/verskeep/internal/store/blob"
	"github.com/keshon/verskeep/internal/store/meta"
)

// Manager coordinates the snapshot stores for files in any workspace.
type Manager struct {
	Resolver *config.Resolver
	Blobs    *blob.BlobContext
	Metas    *meta.MetaContext
	Hasher   *hash.Hasher

	fs          fs.FS
	log         *logger.Logger
	now         func() time.Time
	maxVersions int
}

// Options allows optional dependency injection.
type Options struct {
	FS     fs.FS
	Logger *logger.Logger
	Getwd  func() (string, error)
	Now    func() time.Time
}

// NewManagerDefault creates a Manager on the OS filesystem.
func NewManagerDefault(cfg *config.Config) (*Manager, error) {
	return NewManager(cfg, nil)
}

// NewManager creates a Manager with optional dependencies.
func NewManager(cfg *config.Config, opts *Options) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil Config provided")
	}
	if opts == nil {
		opts = &Options{}
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = fs.NewOSFS()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	hasher, err := hash.New(cfg.Hash, fsys)
	if err != nil {
		return nil, err
	}

	layout := cfg.Layout()
	metas := meta.NewMetaContext(layout, fsys)
	metas.Now = now

	return &Manager{
		Resolver:    config.NewResolver(cfg.Workspaces, layout, fsys, opts.Getwd),
		Blobs:       blob.NewBlobContext(layout, fsys),
		Metas:       metas,
		Hasher:      hasher,
		fs:          fsys,
		log:         log,
		now:         now,
		maxVersions: cfg.MaxVersionsPerFile,
	}, nil
}

// target is a file resolved to its workspace.
type target struct {
	root string
	path string
}

func (m *Manager) resolve(ctx context.Context, path string) (target, error) {
	if err := ctx.Err(); err != nil {
		return target{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return target{}, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	root, err := m.Resolver.Resolve(abs)
	if err != nil {
		return target{}, err
	}
	return target{root: root, path: abs}, nil
}

// Workspace returns the workspace root that owns path.
func (m *Manager) Workspace(ctx context.Context, path string) (string, error) {
	t, err := m.resolve(ctx, path)
	if err != nil {
		return "", err
	}
	return t.root, nil
}

// SaveVersion snapshots the current content of path and makes it current.
// The blob is written before the metadata; a failure in between leaves an
// orphan blob that Verify reports.
func (m *Manager) SaveVersion(ctx context.Context, path, description string) (meta.Version, error) {
	t, err := m.resolve(ctx, path)
	if err != nil {
		return meta.Version{}, fmt.Errorf("failed to save version of %q: %w", path, err)
	}

	data, err := m.fs.ReadFile(t.path)
	if err != nil {
		return meta.Version{}, fmt.Errorf("failed to read %q: %w", t.path, err)
	}

	rec, err := m.Metas.Read(t.root, t.path)
	if err != nil {
		return meta.Version{}, err
	}

	v := meta.Version{
		ID:           NextID(&rec.Versions),
		CreatedAt:    meta.NewTimestamp(m.now()),
		Description:  description,
		ContentHash:  m.Hasher.Hash(data),
		OriginalPath: t.path,
		SizeBytes:    int64(len(data)),
	}

	if err := ctx.Err(); err != nil {
		return meta.Version{}, err
	}
	if err := m.Blobs.Save(t.root, t.path, v.ID, data); err != nil {
		return meta.Version{}, fmt.Errorf("failed to save version %q of %q: %w", v.ID, t.path, err)
	}
	rec, err = m.Metas.AddDescriptor(t.root, t.path, v)
	if err != nil {
		return meta.Version{}, fmt.Errorf("failed to record version %q of %q: %w", v.ID, t.path, err)
	}

	m.log.InfoCtx(ctx, "version saved",
		logger.KeyFile, t.path,
		logger.KeyVersion, v.ID,
		"size", v.SizeBytes,
	)

	m.prune(ctx, t, rec)
	return v, nil
}

// prune deletes the oldest snapshots beyond the retention limit. Failures
// are logged only.
func (m *Manager) prune(ctx context.Context, t target, rec *meta.Record) {
	if m.maxVersions <= 0 || rec.Versions.Len() <= m.maxVersions {
		return
	}
	versions := sortByCreated(rec.Versions.All())
	excess := versions[:len(versions)-m.maxVersions]
	for _, v := range excess {
		if err := m.DeleteVersion(ctx, t.path, v.ID); err != nil {
			m.log.WarnCtx(ctx, "failed to prune version",
				logger.KeyFile, t.path,
				logger.KeyVersion, v.ID,
				"error", err,
			)
			continue
		}
		m.log.DebugCtx(ctx, "pruned version", logger.KeyFile, t.path, logger.KeyVersion, v.ID)
	}
}

// GetVersions returns every snapshot of path, oldest first.
func (m *Manager) GetVersions(ctx context.Context, path string) ([]meta.Version, error) {
	t, err := m.resolve(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions of %q: %w", path, err)
	}
	rec, err := m.Metas.Read(t.root, t.path)
	if err != nil {
		return nil, err
	}
	return sortByCreated(rec.Versions.All()), nil
}

// GetVersion returns the snapshot id of path.
func (m *Manager) GetVersion(ctx context.Context, path, id string) (meta.Version, error) {
	t, err := m.resolve(ctx, path)
	if err != nil {
		return meta.Version{}, err
	}
	rec, err := m.Metas.Read(t.root, t.path)
	if err != nil {
		return meta.Version{}, err
	}
	v, ok := rec.Versions.Get(id)
	if !ok {
		return meta.Version{}, fmt.Errorf("%q of %q: %w", id, t.path, ErrVersionNotFound)
	}
	return v, nil
}

// Current returns the current snapshot of path, if any.
func (m *Manager) Current(ctx context.Context, path string) (meta.Version, bool, error) {
	t, err := m.resolve(ctx, path)
	if err != nil {
		return meta.Version{}, false, err
	}
	rec, err := m.Metas.Read(t.root, t.path)
	if err != nil {
		return meta.Version{}, false, err
	}
	v, ok := rec.Current()
	return v, ok, nil
}

// HasChanged reports whether path differs from its current snapshot. A file
// without a current snapshot counts as changed.
func (m *Manager) HasChanged(ctx context.Context, path string) (bool, error) {
	t, err := m.resolve(ctx, path)
	if err != nil {
		return false, err
	}
	rec, err := m.Metas.Read(t.root, t.path)
	if err != nil {
		return false, err
	}
	cur, ok := rec.Current()
	if !ok {
		return true, nil
	}
	data, err := m.fs.ReadFile(t.path)
	if err != nil {
		return false, fmt.Errorf("failed to read %q: %w", t.path, err)
	}
	return !hash.Verify(data, cur.ContentHash), nil
}

// LoadVersion overwrites path with the content of snapshot id. The current
// version is left unchanged.
func (m *Manager) LoadVersion(ctx context.Context, path, id string) error {
	t, err := m.resolve(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to load version %q of %q: %w", id, path, err)
	}
	rec, err := m.Metas.Read(t.root, t.path)
	if err != nil {
		return err
	}
	if _, ok := rec.Versions.Get(id); !ok {
		return fmt.Errorf("%q of %q: %w", id, t.path, ErrVersionNotFound)
	}

	data, err := m.Blobs.Load(t.root, t.path, id)
	if err != nil {
		return fmt.Errorf("failed to load version %q of %q: %w", id, t.path, err)
	}

	perm := os.FileMode(0o644)
	if fi, err := m.fs.Stat(t.path); err == nil {
		perm = fi.Mode().Perm()
	}
	if err := m.fs.WriteFile(t.path, data, perm); err != nil {
		return fmt.Errorf("failed to restore %q: %w", t.path, err)
	}

	m.log.InfoCtx(ctx, "version loaded", logger.KeyFile, t.path, logger.KeyVersion, id)
	return nil
}

// DeleteVersion removes snapshot id of path. The metadata is updated first;
// an unknown id touches nothing.
func (m *Manager) DeleteVersion(ctx context.Context, path, id string) error {
	t, err := m.resolve(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to delete version %q of %q: %w", id, path, err)
	}
	_, found, err := m.Metas.RemoveDescriptor(t.root, t.path, id)
	if err != nil {
		return fmt.Errorf("failed to delete version %q of %q: %w", id, t.path, err)
	}
	if !found {
		return fmt.Errorf("%q of %q: %w", id, t.path, ErrVersionNotFound)
	}
	if err := m.Blobs.Remove(t.root, t.path, id); err != nil {
		return err
	}

	m.log.InfoCtx(ctx, "version deleted", logger.KeyFile, t.path, logger.KeyVersion, id)
	return nil
}

// BlobPath returns where snapshot id of path is stored.
func (m *Manager) BlobPath(ctx context.Context, path, id string) (string, error) {
	t, err := m.resolve(ctx, path)
	if err != nil {
		return "", err
	}
	return m.Blobs.Path(t.root, t.path, id)
}

// LockPath returns the watcher lock file for path.
func (m *Manager) LockPath(ctx context.Context, path string) (string, error) {
	t, err := m.resolve(ctx, path)
	if err != nil {
		return "", err
	}
	return m.Blobs.Layout.LockPath(t.root, t.path)
}

// sortByCreated orders versions by timestamp, keeping insertion order for
// equal timestamps.
func sortByCreated(vs []meta.Version) []meta.Version {
	sort.SliceStable(vs, func(i, j int) bool {
		return vs[i].CreatedAt.Millis() < vs[j].CreatedAt.Millis()
	})
	return vs
}
