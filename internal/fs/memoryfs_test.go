package fs_test

import (
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/verskeep/internal/fs"
)

func TestMemoryFS_WriteReadFile(t *testing.T) {
	m := fs.NewMemoryFS()
	require.NoError(t, m.MkdirAll("dir/sub", 0o755))

	content := []byte("hello world")
	require.NoError(t, m.WriteFile("dir/sub/file.txt", content, 0o644))

	read, err := m.ReadFile("dir/sub/file.txt")
	require.NoError(t, err)
	assert.Equal(t, content, read)

	// returned slice is a copy
	read[0] = 'H'
	again, err := m.ReadFile("dir/sub/file.txt")
	require.NoError(t, err)
	assert.Equal(t, content, again)
}

func TestMemoryFS_AbsolutePaths(t *testing.T) {
	m := fs.NewMemoryFS()
	require.NoError(t, m.MkdirAll("/ws/.versions/src", 0o755))
	require.NoError(t, m.WriteFile("/ws/.versions/src/a.go.v1.0", []byte("x"), 0o644))

	assert.True(t, m.IsDir("/ws"))
	assert.True(t, m.IsDir("/ws/.versions/src"))
	assert.True(t, m.Exists("/ws/.versions/src/a.go.v1.0"))

	entries, err := m.ReadDir("/ws")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".versions", entries[0].Name())
	assert.True(t, entries[0].IsDir())
}

func TestMemoryFS_WriteFileNonExistentDir(t *testing.T) {
	m := fs.NewMemoryFS()
	err := m.WriteFile("nope/file.txt", []byte("x"), 0o644)
	require.Error(t, err)
	assert.True(t, m.IsNotExist(err))
}

func TestMemoryFS_OpenAndClose(t *testing.T) {
	m := fs.NewMemoryFS()
	require.NoError(t, m.MkdirAll("d", 0o755))
	require.NoError(t, m.WriteFile("d/f", []byte("abc"), 0o644))

	f, err := m.Open("d/f")
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

func TestMemoryFS_Remove(t *testing.T) {
	m := fs.NewMemoryFS()
	require.NoError(t, m.MkdirAll("d", 0o755))
	require.NoError(t, m.WriteFile("d/f", []byte("x"), 0o644))

	require.True(t, m.Exists("d/f"))
	require.NoError(t, m.Remove("d/f"))
	assert.False(t, m.Exists("d/f"))

	assert.True(t, m.IsNotExist(m.Remove("missing")))
}

func TestMemoryFS_RenameFileAndDir(t *testing.T) {
	m := fs.NewMemoryFS()
	require.NoError(t, m.MkdirAll("dir/sub", 0o755))
	require.NoError(t, m.WriteFile("dir/f", []byte("data"), 0o644))

	require.NoError(t, m.Rename("dir/f", "dir/f2"))
	assert.False(t, m.Exists("dir/f"))
	assert.True(t, m.Exists("dir/f2"))

	require.NoError(t, m.Rename("dir/sub", "dir/sub2"))
	assert.False(t, m.Exists("dir/sub"))
	assert.True(t, m.Exists("dir/sub2"))

	assert.True(t, m.IsNotExist(m.Rename("nope", "new")))
}

func TestMemoryFS_StatAndIsDir(t *testing.T) {
	m := fs.NewMemoryFS()
	require.NoError(t, m.MkdirAll("a/b", 0o755))
	require.NoError(t, m.WriteFile("a/b/f.txt", []byte("xyz"), 0o644))

	info, err := m.Stat("a/b/f.txt")
	require.NoError(t, err)
	assert.False(t, info.IsDir())
	assert.EqualValues(t, 3, info.Size())

	info, err = m.Stat("a/b")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = m.Stat("missing")
	assert.True(t, m.IsNotExist(err))
}

func TestMemoryFS_ReadDir(t *testing.T) {
	m := fs.NewMemoryFS()
	require.NoError(t, m.MkdirAll("root/a", 0o755))
	require.NoError(t, m.MkdirAll("root/b", 0o755))
	require.NoError(t, m.WriteFile("root/f1.txt", []byte("x"), 0o644))
	require.NoError(t, m.WriteFile("root/a/f2.txt", []byte("y"), 0o644))

	entries, err := m.ReadDir("root")
	require.NoError(t, err)

	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name()] = e.IsDir()
	}
	assert.Equal(t, map[string]bool{"a": true, "b": true, "f1.txt": false}, names)

	_, err = m.ReadDir("missing")
	assert.True(t, m.IsNotExist(err))
}

func TestMemoryFS_CreateTempFile(t *testing.T) {
	m := fs.NewMemoryFS()
	require.NoError(t, m.MkdirAll("tmp", 0o755))

	wc1, name1, err := m.CreateTempFile("tmp", ".tmp-*")
	require.NoError(t, err)
	_, name2, err := m.CreateTempFile("tmp", ".tmp-*")
	require.NoError(t, err)
	assert.NotEqual(t, name1, name2)

	_, err = wc1.Write([]byte("abc"))
	require.NoError(t, err)
	require.NoError(t, wc1.Close())

	read, err := m.ReadFile(name1)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(read))

	_, _, err = m.CreateTempFile("missing", "x*")
	assert.True(t, m.IsNotExist(err))
}

func TestMemoryFS_PathNormalization(t *testing.T) {
	m := fs.NewMemoryFS()
	require.NoError(t, m.MkdirAll("a/b", 0o755))
	require.NoError(t, m.WriteFile("a/b/f", []byte("x"), 0o644))

	assert.True(t, m.Exists("a/./b/../b/f"))
	assert.True(t, m.IsDir("a/./b/../b"))
}

func TestMemoryFS_ConcurrentWrites(t *testing.T) {
	m := fs.NewMemoryFS()
	require.NoError(t, m.MkdirAll("d", 0o755))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.WriteFile("d/shared", []byte("x"), 0o644)
			_, _ = m.ReadFile("d/shared")
		}()
	}
	wg.Wait()
	assert.True(t, m.Exists("d/shared"))
}
