package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConfigurationErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	tests := []struct {
		name  string
		root  string
		tools string
		field string
	}{
		{"empty root", "", dir, "root"},
		{"missing root", filepath.Join(dir, "nope"), dir, "root"},
		{"root is a file", file, dir, "root"},
		{"empty tools", dir, "", "tools"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws, err := New(tt.root, tt.tools)
			assert.Nil(t, ws)
			var cerr *ConfigurationError
			require.True(t, errors.As(err, &cerr), "got %v", err)
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}

func TestNew_ToolsDirNotValidatedEagerly(t *testing.T) {
	root := t.TempDir()
	ws, err := New(root, filepath.Join(root, "does-not-exist"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "does-not-exist"), ws.ToolsDir())
}

func TestFinalDir(t *testing.T) {
	root := t.TempDir()
	ws, err := New(root, root)
	require.NoError(t, err)

	canonical, err := Canonical(root)
	require.NoError(t, err)
	want := canonical + string(filepath.Separator) + "final"
	assert.Equal(t, want, ws.FinalDirPath())

	_, err = os.Stat(want)
	assert.True(t, os.IsNotExist(err), "final dir is created lazily")

	got, err := ws.FinalDir()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	fi, err := os.Stat(want)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}

func TestJobDir_StageAndRelease(t *testing.T) {
	root := t.TempDir()
	ws, err := New(root, root)
	require.NoError(t, err)

	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "logo small.png")
	require.NoError(t, os.WriteFile(src, []byte("pixels"), 0o444))

	job, err := ws.NewJob()
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)

	staged, err := job.Stage(src)
	require.NoError(t, err)
	assert.Equal(t, "logo small.png", filepath.Base(staged))
	assert.NotEqual(t, src, staged)

	b, err := os.ReadFile(staged)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(b))

	// The copy is private: writing to it leaves the master untouched.
	require.NoError(t, os.WriteFile(staged, []byte("changed"), 0o644))
	b, err = os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(b))

	require.NoError(t, job.Release())
	require.NoError(t, job.Release())
	_, err = os.Stat(job.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestNewJob_DistinctDirectories(t *testing.T) {
	root := t.TempDir()
	ws, err := New(root, root)
	require.NoError(t, err)

	a, err := ws.NewJob()
	require.NoError(t, err)
	b, err := ws.NewJob()
	require.NoError(t, err)
	defer a.Release()
	defer b.Release()
	assert.NotEqual(t, a.Path, b.Path)
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.bin")
	dst := filepath.Join(dir, "b.bin")
	require.NoError(t, os.WriteFile(src, []byte("abc"), 0o644))

	require.NoError(t, MoveFile(src, dst))
	_, err := os.Stat(src)
	assert.True(t, os.IsNotExist(err))
	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(b))
}
