package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	t.Parallel()

	n, err := ParseSize("5MB")
	require.NoError(t, err)
	assert.Equal(t, int64(5_000_000), n)

	n, err = ParseSize("1KiB")
	require.NoError(t, err)
	assert.Equal(t, int64(1024), n)

	_, err = ParseSize("lots")
	assert.Error(t, err)
}

func TestRotatingWriter_RotatesOnSize(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "maestro.log")
	w, err := NewRotatingWriter(path, RotationConfig{MaxSize: 16, MaxBackups: 10})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	_, err = w.Write([]byte("0123456789\n"))
	require.NoError(t, err)
	assert.Empty(t, w.Backups())

	_, err = w.Write([]byte("abcdefghij\n"))
	require.NoError(t, err)

	backups := w.Backups()
	require.Len(t, backups, 1)
	old, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, "0123456789\n", string(old))

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abcdefghij\n", string(current))
}

func TestRotatingWriter_OversizedWriteToEmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "maestro.log")
	w, err := NewRotatingWriter(path, RotationConfig{MaxSize: 4})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	_, err = w.Write([]byte(strings.Repeat("x", 32)))
	require.NoError(t, err)
	assert.Empty(t, w.Backups(), "an empty file is never rotated")
}

func TestRotatingWriter_PrunesBackups(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "maestro.log")
	old := time.Now().Add(-48 * time.Hour)
	for i, name := range []string{"maestro.a.log", "maestro.b.log", "maestro.c.log"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
		mt := old.Add(time.Duration(i) * time.Hour)
		require.NoError(t, os.Chtimes(p, mt, mt))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.log"), []byte("x"), 0o644))

	w, err := NewRotatingWriter(path, RotationConfig{MaxSize: 1024, MaxBackups: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	backups := w.Backups()
	require.Len(t, backups, 2)
	assert.Equal(t, filepath.Join(dir, "maestro.c.log"), backups[0])
	assert.FileExists(t, filepath.Join(dir, "other.log"))
}

func TestRotatingWriter_PrunesByAge(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	stale := filepath.Join(dir, "maestro.old.log")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))
	mt := time.Now().AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(stale, mt, mt))

	w, err := NewRotatingWriter(filepath.Join(dir, "maestro.log"), RotationConfig{MaxAge: 7})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	assert.NoFileExists(t, stale)
}

func TestRotatingWriter_WriteAfterClose(t *testing.T) {
	t.Parallel()

	w, err := NewRotatingWriter(filepath.Join(t.TempDir(), "maestro.log"), RotationConfig{})
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err = w.Write([]byte("late"))
	assert.ErrorIs(t, err, os.ErrClosed)
}
