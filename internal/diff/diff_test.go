package diff_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/keshon/verskeep/internal/config"
	"github.com/keshon/verskeep/internal/diff"
	"github.com/keshon/verskeep/internal/fs"
	"github.com/keshon/verskeep/internal/store/meta"
	"github.com/keshon/verskeep/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocator struct {
	versions map[string]meta.Version
}

func (f *fakeLocator) GetVersion(_ context.Context, _, id string) (meta.Version, error) {
	v, ok := f.versions[id]
	if !ok {
		return meta.Version{}, version.ErrVersionNotFound
	}
	return v, nil
}

func (f *fakeLocator) BlobPath(_ context.Context, path, id string) (string, error) {
	return "/w/.versions/" + filepath.Base(path) + "." + id, nil
}

type call struct{ left, right, title string }

type recordingViewer struct {
	calls []call
	err   error
}

func (r *recordingViewer) Compare(_ context.Context, left, right, title string) error {
	r.calls = append(r.calls, call{left, right, title})
	return r.err
}

func TestCurrentTitle(t *testing.T) {
	v := meta.Version{ID: "v1.2", Description: "before refactor"}
	assert.Equal(t, "Current ↔ v1.2 (before refactor)", diff.CurrentTitle(v))

	ts := time.Date(2024, 3, 5, 14, 7, 9, 0, time.Local)
	v = meta.Version{ID: "v1.0", CreatedAt: meta.NewTimestamp(ts)}
	assert.Equal(t, "Current ↔ v1.0 (2024-03-05 14:07:09)", diff.CurrentTitle(v))
}

func TestCompareTitle(t *testing.T) {
	assert.Equal(t, "v1.0 ↔ v1.3", diff.CompareTitle("v1.0", "v1.3"))
}

func TestShowDiff(t *testing.T) {
	viewer := &recordingViewer{}
	p := diff.NewPresenter(&fakeLocator{}, viewer, nil)

	v := meta.Version{ID: "v1.1", Description: "draft"}
	require.NoError(t, p.ShowDiff(context.Background(), "/w/a.txt", v))

	require.Len(t, viewer.calls, 1)
	assert.Equal(t, "/w/.versions/a.txt.v1.1", viewer.calls[0].left)
	assert.Equal(t, filepath.Clean("/w/a.txt"), viewer.calls[0].right)
	assert.Equal(t, "Current ↔ v1.1 (draft)", viewer.calls[0].title)
}

func TestShowDiff_ViewerError(t *testing.T) {
	viewer := &recordingViewer{err: errors.New("boom")}
	p := diff.NewPresenter(&fakeLocator{}, viewer, nil)

	err := p.ShowDiff(context.Background(), "/w/a.txt", meta.Version{ID: "v1.0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestCompareTwoVersions(t *testing.T) {
	loc := &fakeLocator{versions: map[string]meta.Version{
		"v1.0": {ID: "v1.0"},
		"v1.4": {ID: "v1.4"},
	}}
	viewer := &recordingViewer{}
	p := diff.NewPresenter(loc, viewer, nil)

	require.NoError(t, p.CompareTwoVersions(context.Background(), "/w/a.txt", "v1.0", "v1.4"))
	require.Len(t, viewer.calls, 1)
	assert.Equal(t, call{
		left:  "/w/.versions/a.txt.v1.0",
		right: "/w/.versions/a.txt.v1.4",
		title: "v1.0 ↔ v1.4",
	}, viewer.calls[0])

	err := p.CompareTwoVersions(context.Background(), "/w/a.txt", "v1.0", "v9.0")
	assert.ErrorIs(t, err, version.ErrVersionNotFound)
	assert.Len(t, viewer.calls, 1)
}

func TestUnifiedViewer(t *testing.T) {
	mem := fs.NewMemoryFS()
	require.NoError(t, mem.MkdirAll("/d", 0o755))
	require.NoError(t, mem.WriteFile("/d/left", []byte("alpha\nbeta\ngamma\n"), 0o644))
	require.NoError(t, mem.WriteFile("/d/right", []byte("alpha\nBETA\ngamma\n"), 0o644))

	var out bytes.Buffer
	v := diff.NewUnifiedViewer(&out, mem, 3)
	require.NoError(t, v.Compare(context.Background(), "/d/left", "/d/right", "v1.0 ↔ v1.1"))

	got := out.String()
	assert.Contains(t, got, "v1.0 ↔ v1.1\n")
	assert.Contains(t, got, "--- /d/left\n")
	assert.Contains(t, got, "+++ /d/right\n")
	assert.Contains(t, got, "-beta\n")
	assert.Contains(t, got, "+BETA\n")
	assert.Contains(t, got, " alpha\n")
}

func TestUnifiedViewer_Identical(t *testing.T) {
	mem := fs.NewMemoryFS()
	require.NoError(t, mem.WriteFile("/x", []byte("same\n"), 0o644))
	require.NoError(t, mem.WriteFile("/y", []byte("same\n"), 0o644))

	var out bytes.Buffer
	require.NoError(t, diff.NewUnifiedViewer(&out, mem, 3).Compare(context.Background(), "/x", "/y", "t"))
	assert.Equal(t, "t\nNo differences.\n", out.String())
}

func TestUnifiedViewer_MissingFile(t *testing.T) {
	var out bytes.Buffer
	err := diff.NewUnifiedViewer(&out, fs.NewMemoryFS(), 3).Compare(context.Background(), "/x", "/y", "t")
	require.Error(t, err)
}

func TestExecViewer_Command(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want []string
	}{
		{
			name: "placeholders",
			argv: []string{"code", "--diff", "{left}", "{right}"},
			want: []string{"code", "--diff", "/l", "/r"},
		},
		{
			name: "title",
			argv: []string{"meld", "--label={title}", "{left}", "{right}"},
			want: []string{"meld", "--label=a ↔ b", "/l", "/r"},
		},
		{
			name: "paths appended",
			argv: []string{"diff", "-u"},
			want: []string{"diff", "-u", "/l", "/r"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := diff.NewExecViewer(tt.argv, nil, nil).Command("/l", "/r", "a ↔ b")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := diff.NewExecViewer(nil, nil, nil).Command("/l", "/r", "t")
	assert.Error(t, err)
}

func TestNewViewer(t *testing.T) {
	var out bytes.Buffer

	v := diff.NewViewer(config.DiffConfig{Context: 3}, &out, &out, fs.NewMemoryFS())
	_, ok := v.(*diff.UnifiedViewer)
	assert.True(t, ok)

	v = diff.NewViewer(config.DiffConfig{Tool: []string{"meld"}}, &out, &out, nil)
	ev, ok := v.(*diff.ExecViewer)
	require.True(t, ok)
	assert.Equal(t, []string{"meld"}, ev.Argv)
}
