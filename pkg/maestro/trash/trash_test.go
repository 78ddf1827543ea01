package trash

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMove_Directory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".maestro")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "learnings"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "learnings", "notes.md"), []byte("x"), 0o644))

	method, err := Move(context.Background(), dir)
	require.NoError(t, err)
	assert.Contains(t, []Method{Trashed, Deleted}, method)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestMove_Nonexistent(t *testing.T) {
	_, err := Move(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "gone")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "b"), 0o755))

	method, err := Delete(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, Deleted, method)
	assert.NoDirExists(t, dir)

	method, err = Delete(context.Background(), dir)
	require.NoError(t, err, "deleting a missing path is not an error")
	assert.Equal(t, Deleted, method)
}

func TestHelpers(t *testing.T) {
	t.Parallel()

	hs := helpers("/tmp/x")
	switch runtime.GOOS {
	case "linux":
		require.Len(t, hs, 2)
		assert.Equal(t, []string{"gio", "trash", "/tmp/x"}, hs[0])
	case "darwin":
		require.Len(t, hs, 1)
		assert.Contains(t, hs[0][2], `POSIX file "/tmp/x"`)
	default:
		assert.Empty(t, hs)
	}
}

var _ Func = Move
var _ Func = Delete
