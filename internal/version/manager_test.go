package version_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/keshon/verskeep/internal/config"
	"github.com/keshon/verskeep/internal/fs"
	"github.com/keshon/verskeep/internal/store/blob"
	"github.com/keshon/verskeep/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFile = "/w/docs/test.txt"

// clock advances one second per call.
type clock struct{ t time.Time }

func (c *clock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestManager(t *testing.T, mutate func(*config.Config)) (*version.Manager, *fs.MemoryFS) {
	t.Helper()
	mem := fs.NewMemoryFS()
	require.NoError(t, mem.MkdirAll("/w/docs", 0o755))
	require.NoError(t, mem.WriteFile(testFile, []byte("This is a test file."), 0o644))

	cfg := config.Default()
	cfg.Workspaces = []string{"/w"}
	if mutate != nil {
		mutate(cfg)
	}
	c := &clock{t: time.UnixMilli(1_700_000_000_000)}
	m, err := version.NewManager(cfg, &version.Options{FS: mem, Now: c.now})
	require.NoError(t, err)
	return m, mem
}

func TestSaveVersion(t *testing.T) {
	m, mem := newTestManager(t, nil)
	ctx := context.Background()

	v, err := m.SaveVersion(ctx, testFile, "")
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, "v1.0", v.ID)
	assert.Equal(t, testFile, v.OriginalPath)
	assert.Equal(t, int64(len("This is a test file.")), v.SizeBytes)
	assert.Equal(t, m.Hasher.Hash([]byte("This is a test file.")), v.ContentHash)

	assert.True(t, mem.Exists("/w/.versions/docs/test.txt.v1.0"))
	assert.True(t, mem.Exists("/w/.versions/docs/test.txt.metadata.json"))

	cur, ok, err := m.Current(ctx, testFile)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1.0", cur.ID)
}

func TestSaveVersion_TwoVersionsInOrder(t *testing.T) {
	m, _ := newTestManager(t, nil)
	ctx := context.Background()

	_, err := m.SaveVersion(ctx, testFile, "Version 1")
	require.NoError(t, err)
	_, err = m.SaveVersion(ctx, testFile, "Version 2")
	require.NoError(t, err)

	vs, err := m.GetVersions(ctx, testFile)
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, "Version 1", vs[0].Description)
	assert.Equal(t, "Version 2", vs[1].Description)
	assert.Equal(t, "v1.0", vs[0].ID)
	assert.Equal(t, "v1.1", vs[1].ID)
}

func TestSaveVersion_IDSequence(t *testing.T) {
	m, _ := newTestManager(t, nil)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 12; i++ {
		v, err := m.SaveVersion(ctx, testFile, "")
		require.NoError(t, err)
		ids = append(ids, v.ID)
	}
	assert.Equal(t, "v1.0", ids[0])
	assert.Equal(t, "v1.9", ids[9])
	assert.Equal(t, "v1.10", ids[10])
	assert.Equal(t, "v1.11", ids[11])
}

func TestSaveThenLoad_RestoresContent(t *testing.T) {
	m, mem := newTestManager(t, nil)
	ctx := context.Background()

	v, err := m.SaveVersion(ctx, testFile, "")
	require.NoError(t, err)

	require.NoError(t, mem.WriteFile(testFile, []byte("This is a modified test file."), 0o644))
	require.NoError(t, m.LoadVersion(ctx, testFile, v.ID))

	data, err := mem.ReadFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, "This is a test file.", string(data))
}

func TestLoadVersion_DoesNotChangeCurrent(t *testing.T) {
	m, _ := newTestManager(t, nil)
	ctx := context.Background()

	first, err := m.SaveVersion(ctx, testFile, "")
	require.NoError(t, err)
	_, err = m.SaveVersion(ctx, testFile, "")
	require.NoError(t, err)

	require.NoError(t, m.LoadVersion(ctx, testFile, first.ID))

	cur, ok, err := m.Current(ctx, testFile)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1.1", cur.ID)

	vs, err := m.GetVersions(ctx, testFile)
	require.NoError(t, err)
	assert.Len(t, vs, 2)
}

func TestLoadVersion_UnknownID(t *testing.T) {
	m, mem := newTestManager(t, nil)
	ctx := context.Background()

	err := m.LoadVersion(ctx, testFile, "v4.2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, version.ErrVersionNotFound))

	data, _ := mem.ReadFile(testFile)
	assert.Equal(t, "This is a test file.", string(data))
}

func TestLoadVersion_MissingBlob(t *testing.T) {
	m, mem := newTestManager(t, nil)
	ctx := context.Background()

	v, err := m.SaveVersion(ctx, testFile, "")
	require.NoError(t, err)
	require.NoError(t, mem.Remove("/w/.versions/docs/test.txt.v1.0"))

	err = m.LoadVersion(ctx, testFile, v.ID)
	assert.ErrorIs(t, err, blob.ErrBlobNotFound)
}

func TestSaveThenDelete(t *testing.T) {
	m, mem := newTestManager(t, nil)
	ctx := context.Background()

	v, err := m.SaveVersion(ctx, testFile, "")
	require.NoError(t, err)
	require.NoError(t, m.DeleteVersion(ctx, testFile, v.ID))

	vs, err := m.GetVersions(ctx, testFile)
	require.NoError(t, err)
	assert.Empty(t, vs)
	assert.False(t, mem.Exists("/w/.versions/docs/test.txt.v1.0"))

	_, ok, err := m.Current(ctx, testFile)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteVersion_ReassignsCurrent(t *testing.T) {
	m, _ := newTestManager(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := m.SaveVersion(ctx, testFile, "")
		require.NoError(t, err)
	}
	require.NoError(t, m.DeleteVersion(ctx, testFile, "v1.2"))

	cur, ok, err := m.Current(ctx, testFile)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1.1", cur.ID)
}

func TestDeleteVersion_Unknown(t *testing.T) {
	m, mem := newTestManager(t, nil)
	ctx := context.Background()

	_, err := m.SaveVersion(ctx, testFile, "")
	require.NoError(t, err)
	before, err := mem.ReadFile("/w/.versions/docs/test.txt.metadata.json")
	require.NoError(t, err)

	err = m.DeleteVersion(ctx, testFile, "v9.9")
	assert.ErrorIs(t, err, version.ErrVersionNotFound)

	after, err := mem.ReadFile("/w/.versions/docs/test.txt.metadata.json")
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.True(t, mem.Exists("/w/.versions/docs/test.txt.v1.0"))
}

func TestDeleteVersion_BlobAlreadyMissing(t *testing.T) {
	m, mem := newTestManager(t, nil)
	ctx := context.Background()

	v, err := m.SaveVersion(ctx, testFile, "")
	require.NoError(t, err)
	require.NoError(t, mem.Remove("/w/.versions/docs/test.txt.v1.0"))

	require.NoError(t, m.DeleteVersion(ctx, testFile, v.ID))
}

func TestIDAfterDeletingLast(t *testing.T) {
	m, _ := newTestManager(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := m.SaveVersion(ctx, testFile, "")
		require.NoError(t, err)
	}
	require.NoError(t, m.DeleteVersion(ctx, testFile, "v1.2"))

	// derived from the last remaining id, so v1.2 is handed out again
	v, err := m.SaveVersion(ctx, testFile, "")
	require.NoError(t, err)
	assert.Equal(t, "v1.2", v.ID)
}

func TestGetVersions_AbsentRecord(t *testing.T) {
	m, _ := newTestManager(t, nil)
	vs, err := m.GetVersions(context.Background(), testFile)
	require.NoError(t, err)
	assert.Empty(t, vs)
}

func TestGetVersion(t *testing.T) {
	m, _ := newTestManager(t, nil)
	ctx := context.Background()

	_, err := m.SaveVersion(ctx, testFile, "first")
	require.NoError(t, err)

	v, err := m.GetVersion(ctx, testFile, "v1.0")
	require.NoError(t, err)
	assert.Equal(t, "first", v.Description)

	_, err = m.GetVersion(ctx, testFile, "v1.5")
	assert.ErrorIs(t, err, version.ErrVersionNotFound)
}

func TestNoWorkspace(t *testing.T) {
	m, mem := newTestManager(t, nil)
	ctx := context.Background()
	require.NoError(t, mem.MkdirAll("/other", 0o755))
	require.NoError(t, mem.WriteFile("/other/a.txt", []byte("x"), 0o644))

	_, err := m.SaveVersion(ctx, "/other/a.txt", "")
	assert.ErrorIs(t, err, version.ErrNoWorkspace)

	_, err = m.GetVersions(ctx, "/other/a.txt")
	assert.ErrorIs(t, err, version.ErrNoWorkspace)
}

func TestSaveVersion_UnreadableFile(t *testing.T) {
	m, _ := newTestManager(t, nil)
	_, err := m.SaveVersion(context.Background(), "/w/docs/missing.txt", "")
	require.Error(t, err)
}

func TestSaveVersion_CanceledContext(t *testing.T) {
	m, _ := newTestManager(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.SaveVersion(ctx, testFile, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSaveVersion_MetadataWriteFailureLeavesOrphan(t *testing.T) {
	m, mem := newTestManager(t, nil)
	ctx := context.Background()

	// a directory where the metadata file should go makes the rename fail
	require.NoError(t, mem.MkdirAll("/w/.versions/docs/test.txt.metadata.json", 0o755))

	_, err := m.SaveVersion(ctx, testFile, "")
	require.Error(t, err)
	assert.True(t, mem.Exists("/w/.versions/docs/test.txt.v1.0"))
}

func TestHasChanged(t *testing.T) {
	m, mem := newTestManager(t, nil)
	ctx := context.Background()

	changed, err := m.HasChanged(ctx, testFile)
	require.NoError(t, err)
	assert.True(t, changed, "no current version")

	_, err = m.SaveVersion(ctx, testFile, "")
	require.NoError(t, err)
	changed, err = m.HasChanged(ctx, testFile)
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, mem.WriteFile(testFile, []byte("edited"), 0o644))
	changed, err = m.HasChanged(ctx, testFile)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestHasChanged_AfterWorkspaceMove(t *testing.T) {
	base := t.TempDir()
	oldWS := filepath.Join(base, "ws1")
	newWS := filepath.Join(base, "ws2")
	require.NoError(t, os.MkdirAll(oldWS, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(oldWS, "a.txt"), []byte("hello"), 0o644))

	// no configured roots: the first save falls back to the working directory,
	// later lookups find the workspace by its versions dir
	getwd := func() (string, error) { return oldWS, nil }
	m, err := version.NewManager(config.Default(), &version.Options{Getwd: getwd})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = m.SaveVersion(ctx, filepath.Join(oldWS, "a.txt"), "")
	require.NoError(t, err)
	require.NoError(t, os.Rename(oldWS, newWS))

	moved := filepath.Join(newWS, "a.txt")
	vs, err := m.GetVersions(ctx, moved)
	require.NoError(t, err)
	require.Len(t, vs, 1)

	changed, err := m.HasChanged(ctx, moved)
	require.NoError(t, err)
	assert.False(t, changed)

	// a different file at the old location is not consulted
	require.NoError(t, os.MkdirAll(oldWS, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(oldWS, "a.txt"), []byte("other"), 0o644))
	changed, err = m.HasChanged(ctx, moved)
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(moved, []byte("edited"), 0o644))
	changed, err = m.HasChanged(ctx, moved)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestGetVersions_SortedByTimestamp(t *testing.T) {
	mem := fs.NewMemoryFS()
	require.NoError(t, mem.MkdirAll("/w/docs", 0o755))
	require.NoError(t, mem.WriteFile(testFile, []byte("x"), 0o644))

	// the clock runs backwards, so insertion order is the reverse of time order
	t0 := time.UnixMilli(1_700_000_000_000)
	step := 0
	now := func() time.Time {
		step++
		return t0.Add(-time.Duration(step) * time.Minute)
	}

	cfg := config.Default()
	cfg.Workspaces = []string{"/w"}
	m, err := version.NewManager(cfg, &version.Options{FS: mem, Now: now})
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := m.SaveVersion(ctx, testFile, "")
		require.NoError(t, err)
	}

	vs, err := m.GetVersions(ctx, testFile)
	require.NoError(t, err)
	require.Len(t, vs, 3)
	assert.Equal(t, []string{"v1.2", "v1.1", "v1.0"}, []string{vs[0].ID, vs[1].ID, vs[2].ID})
	assert.True(t, vs[0].CreatedAt.Before(vs[1].CreatedAt.Time))
	assert.True(t, vs[1].CreatedAt.Before(vs[2].CreatedAt.Time))
}

func TestRetention(t *testing.T) {
	m, mem := newTestManager(t, func(c *config.Config) { c.MaxVersionsPerFile = 2 })
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := m.SaveVersion(ctx, testFile, "")
		require.NoError(t, err)
	}

	vs, err := m.GetVersions(ctx, testFile)
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, "v1.2", vs[0].ID)
	assert.Equal(t, "v1.3", vs[1].ID)
	assert.False(t, mem.Exists("/w/.versions/docs/test.txt.v1.0"))
	assert.False(t, mem.Exists("/w/.versions/docs/test.txt.v1.1"))
}

func TestBlobPath(t *testing.T) {
	m, _ := newTestManager(t, nil)
	p, err := m.BlobPath(context.Background(), testFile, "v1.3")
	require.NoError(t, err)
	assert.Equal(t, "/w/.versions/docs/test.txt.v1.3", filepath.ToSlash(p))
}

func TestXXH3Manager(t *testing.T) {
	m, _ := newTestManager(t, func(c *config.Config) { c.Hash = "xxh3" })
	v, err := m.SaveVersion(context.Background(), testFile, "")
	require.NoError(t, err)
	assert.Len(t, v.ContentHash, 32)

	report, err := m.Verify(context.Background(), testFile)
	require.NoError(t, err)
	assert.True(t, report.Healthy())
}

func TestNewManager_NilConfig(t *testing.T) {
	_, err := version.NewManager(nil, nil)
	require.Error(t, err)
}

func TestEndToEnd_OSFilesystem(t *testing.T) {
	ws := t.TempDir()
	file := filepath.Join(ws, "notes", "todo.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o755))
	require.NoError(t, os.WriteFile(file, []byte("This is a test file."), 0o600))

	cfg := config.Default()
	cfg.Workspaces = []string{ws}
	m, err := version.NewManagerDefault(cfg)
	require.NoError(t, err)
	ctx := context.Background()

	v, err := m.SaveVersion(ctx, file, "Version 1")
	require.NoError(t, err)
	assert.Equal(t, file, v.OriginalPath)

	require.NoError(t, os.WriteFile(file, []byte("changed"), 0o600))
	require.NoError(t, m.LoadVersion(ctx, file, v.ID))

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "This is a test file.", string(data))

	fi, err := os.Stat(file)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	_, err = os.Stat(filepath.Join(ws, ".versions", "notes", "todo.md.metadata.json"))
	require.NoError(t, err)

	require.NoError(t, m.DeleteVersion(ctx, file, v.ID))
	vs, err := m.GetVersions(ctx, file)
	require.NoError(t, err)
	assert.Empty(t, vs)
}
