package fsutil_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meyvali/backoffice/internal/fsutil"
)

func TestWriteFile_CreatesDirectoriesAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "data.txt")

	require.NoError(t, fsutil.WriteFile(path, []byte("first")))
	require.NoError(t, fsutil.WriteFile(path, []byte("second")))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(raw))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, fsutil.FileMode, info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriteAtomic_FailedWriteKeepsOriginal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, fsutil.WriteFile(path, []byte("original")))

	boom := errors.New("boom")
	err := fsutil.WriteAtomic(path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(raw))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
