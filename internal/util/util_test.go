package util_test

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/verskeep/internal/fs"
	"github.com/keshon/verskeep/internal/util"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestWriteReadJSON(t *testing.T) {
	m := fs.NewMemoryFS()
	require.NoError(t, m.MkdirAll("/data", 0o755))

	require.NoError(t, util.WriteJSON(m, "/data/doc.json", doc{Name: "a", Count: 2}))

	raw, err := m.ReadFile("/data/doc.json")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"a\",\n  \"count\": 2\n}", string(raw))

	var got doc
	require.NoError(t, util.ReadJSON(m, "/data/doc.json", &got))
	assert.Equal(t, doc{Name: "a", Count: 2}, got)

	// only the target remains, no temp files
	entries, err := m.ReadDir("/data")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFileAtomic_Mode(t *testing.T) {
	p := filepath.Join(t.TempDir(), "blob.v1.0")
	require.NoError(t, util.WriteFileAtomic(fs.NewOSFS(), p, []byte("content")))

	fi, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), fi.Mode().Perm())

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestWriteJSONMissingDir(t *testing.T) {
	m := fs.NewMemoryFS()
	err := util.WriteJSON(m, "/nope/doc.json", doc{})
	require.Error(t, err)
	assert.True(t, m.IsNotExist(err))
}

func TestReadJSONInvalid(t *testing.T) {
	m := fs.NewMemoryFS()
	require.NoError(t, m.MkdirAll("/d", 0o755))
	require.NoError(t, m.WriteFile("/d/bad.json", []byte("{ bad json"), 0o644))

	var got doc
	assert.Error(t, util.ReadJSON(m, "/d/bad.json", &got))
}

func TestParallel(t *testing.T) {
	var sum atomic.Int64
	err := util.Parallel([]int{1, 2, 3, 4, 5}, 2, func(n int) error {
		sum.Add(int64(n))
		return nil
	})
	require.NoError(t, err)
	assert.EqualValues(t, 15, sum.Load())

	boom := errors.New("boom")
	err = util.Parallel([]int{1, 2, 3}, util.WorkerCount(), func(n int) error {
		if n == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, util.Parallel[int](nil, 4, func(int) error { return boom }))
}
